package xjson

import (
	stdjson "encoding/json"

	gjson "github.com/goccy/go-json"
)

// Marshal/Unmarshal wrappers so a single import site decides between
// standard encoding/json and goccy/go-json without touching callers.

func Marshal(v interface{}) ([]byte, error) {
	return gjson.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return gjson.Unmarshal(data, v)
}

// MarshalString renders v as JSON text, falling back to the empty object on
// error. The variable resolver uses it to splice structured context values
// into templates.
func MarshalString(v interface{}) string {
	data, err := gjson.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// RawMessage is kept compatible with encoding/json's RawMessage type.
type RawMessage = stdjson.RawMessage
