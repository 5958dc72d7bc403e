package handlers

// Accessors for the loosely typed node config maps. JSON decoding hands us
// float64 for every number, so the numeric helpers coerce.

func stringField(cfg map[string]interface{}, key string) string {
	if v, ok := cfg[key].(string); ok {
		return v
	}
	return ""
}

func boolField(cfg map[string]interface{}, key string, fallback bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return fallback
}

func intField(cfg map[string]interface{}, key string, fallback int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func floatField(cfg map[string]interface{}, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func mapField(cfg map[string]interface{}, key string) map[string]interface{} {
	if v, ok := cfg[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func listField(cfg map[string]interface{}, key string) []interface{} {
	if v, ok := cfg[key].([]interface{}); ok {
		return v
	}
	return nil
}

func stringListField(cfg map[string]interface{}, key string) []string {
	items := listField(cfg, key)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringMapField(cfg map[string]interface{}, key string) map[string]string {
	raw := mapField(cfg, key)
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
