// Package resolver substitutes {{...}} tokens in node configuration strings
// with values from the run-scoped execution context.
package resolver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/cascade/internal/xjson"
)

var datePattern = regexp.MustCompile(`\{\{date:([^:}]+):?([^}]*)\}\}`)

// Resolve applies substitutions in a fixed order: the today/yesterday
// literals, the parameterized date token, then every context key matched
// case-insensitively as a {{key}} token. Unknown tokens pass through
// unchanged, which makes repeated application idempotent.
func Resolve(text string, context map[string]interface{}) string {
	if text == "" {
		return text
	}

	now := time.Now()
	resolved := strings.ReplaceAll(text, "{{today}}", now.Format("2006-01-02"))
	resolved = strings.ReplaceAll(resolved, "{{yesterday}}", now.AddDate(0, 0, -1).Format("2006-01-02"))

	resolved = datePattern.ReplaceAllStringFunc(resolved, func(token string) string {
		groups := datePattern.FindStringSubmatch(token)
		date := now
		if modifier := groups[2]; strings.HasPrefix(modifier, "sub") {
			if days, err := strconv.Atoi(strings.TrimPrefix(modifier, "sub")); err == nil {
				date = date.AddDate(0, 0, -days)
			}
		}
		return date.Format(goLayout(groups[1]))
	})

	for key, value := range context {
		pattern, err := regexp.Compile(`(?i)\{\{` + regexp.QuoteMeta(key) + `\}\}`)
		if err != nil {
			continue
		}
		resolved = pattern.ReplaceAllLiteralString(resolved, stringify(value))
	}

	return resolved
}

// ResolveValue resolves string values and returns everything else unchanged.
func ResolveValue(value interface{}, context map[string]interface{}) interface{} {
	if s, ok := value.(string); ok {
		return Resolve(s, context)
	}
	return value
}

// goLayout converts yyyy/MM/dd format tokens to a Go time layout.
func goLayout(format string) string {
	layout := strings.ReplaceAll(format, "yyyy", "2006")
	layout = strings.ReplaceAll(layout, "MM", "01")
	return strings.ReplaceAll(layout, "dd", "02")
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}, []interface{}:
		return xjson.MarshalString(v)
	case float64:
		// JSON round-trips integers as float64; keep them whole.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
