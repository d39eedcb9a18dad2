package course

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeStringList turns a tag or instruction value into a list of strings. The value may be a
// JSON-encoded list (as sent in multipart forms) or an already decoded list. Anything else,
// including a missing value, yields an empty list.
func NormalizeStringList(v interface{}) ([]string, error) {
	switch val := v.(type) {
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return []string{}, nil
		}
		var decoded []interface{}
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, err
		}
		return stringsOf(decoded)
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out, nil
	case []interface{}:
		return stringsOf(val)
	default:
		return []string{}, nil
	}
}

func stringsOf(items []interface{}) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, item := range items {
		switch it := item.(type) {
		case string:
			out = append(out, it)
		case float64, bool, json.Number:
			out = append(out, fmt.Sprint(it))
		default:
			return nil, fmt.Errorf("element %d is not a string", i)
		}
	}
	return out, nil
}
