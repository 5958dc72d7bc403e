package domain

import (
	"dario.cat/mergo"
)

// MergeContext folds a handler's context update into the run-scoped execution
// context. Updates win over existing keys; nested maps are merged rather than
// replaced wholesale.
func MergeContext(current map[string]interface{}, update map[string]interface{}) error {
	if len(update) == 0 {
		return nil
	}
	return mergo.Merge(&current, update, mergo.WithOverride)
}
