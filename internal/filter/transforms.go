package filter

import "strings"

// DefaultTransforms are the named transforms every engine knows. A grammar
// token equal to one of these names is treated as a callable, so
// "type:trim" trims and "alias:slug,lower" writes the lowercased value.
func DefaultTransforms() map[string]TransformFunc {
	return map[string]TransformFunc{
		"trim":  stringTransform(strings.TrimSpace),
		"lower": stringTransform(strings.ToLower),
		"upper": stringTransform(strings.ToUpper),
		"split": splitTransform,
	}
}

func stringTransform(fn func(string) string) TransformFunc {
	return func(v any) any {
		switch x := v.(type) {
		case string:
			return fn(x)
		case []string:
			out := make([]string, len(x))
			for i, s := range x {
				out[i] = fn(s)
			}
			return out
		}
		return v
	}
}

// splitTransform turns "a, b,,c" into []string{"a", "b", "c"}.
func splitTransform(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
