// Package value converts loosely typed configuration values. Values come
// from TOML, YAML or the environment, so numbers may arrive as int64,
// float64 or strings.
package value

import (
	"strconv"
	"strings"
	"time"
)

// String returns v as a string, or "" for non-scalar values.
func String(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int, int64, float64, bool:
		return toText(x)
	default:
		return ""
	}
}

// Int returns v as an int, or 0.
func Int(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Float returns v as a float64, or 0.
func Float(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool returns v as a bool, or false.
func Bool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	default:
		return false
	}
}

// Duration parses strings like "250ms". Bare numbers are seconds.
func Duration(v any) time.Duration {
	switch x := v.(type) {
	case time.Duration:
		return x
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(x)); err == nil {
			return d
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return time.Duration(f * float64(time.Second))
		}
		return 0
	case int, int64, float64:
		return time.Duration(Float(x) * float64(time.Second))
	default:
		return 0
	}
}

// StringSlice returns v as a []string. Strings are split on commas.
func StringSlice(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(x, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

func toText(v any) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
