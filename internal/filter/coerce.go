package filter

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var scalarKinds = map[string]bool{
	"int":     true,
	"float":   true,
	"double":  true,
	"bool":    true,
	"boolean": true,
}

// IsScalarKind reports whether kind names a scalar coercion.
func IsScalarKind(kind string) bool {
	return scalarKinds[strings.ToLower(kind)]
}

// Coerce converts v to the scalar kind. Unknown kinds return v unchanged.
func Coerce(v any, kind string) any {
	switch strings.ToLower(kind) {
	case "int":
		return toInt(v)
	case "float", "double":
		return toFloat(v)
	case "bool", "boolean":
		return toBool(v)
	}
	return v
}

// leading number of a string: "42abc" -> 42, " 1.5e2x" -> 150
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

func parseNumber(s string) (float64, bool) {
	m := numericPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func toInt(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case int:
		return x
	case int8, int16, int32, int64:
		return int(reflect.ValueOf(x).Int())
	case uint, uint8, uint16, uint32, uint64, uintptr:
		u := reflect.ValueOf(x).Uint()
		if u > math.MaxInt {
			return math.MaxInt
		}
		return int(u)
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case string:
		s := strings.TrimLeft(x, " \t\n\r\v\f")
		if i, err := strconv.Atoi(integerPrefix(s)); err == nil && !hasFraction(s) {
			return i
		}
		f, _ := parseNumber(s)
		return floatToInt(f)
	}
	if n, ok := collectionLen(v); ok {
		if n == 0 {
			return 0
		}
		return 1
	}
	return 0
}

func integerPrefix(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// hasFraction reports whether the numeric prefix continues past the integer
// digits ("1.5", "1e3"), in which case the float path is used.
func hasFraction(s string) bool {
	p := integerPrefix(s)
	return len(numericPrefix.FindString(s)) > len(p)
}

// out-of-range values saturate
func floatToInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(x).Convert(reflect.TypeOf(float64(0))).Float()
	case string:
		f, _ := parseNumber(x)
		return f
	}
	if n, ok := collectionLen(v); ok && n > 0 {
		return 1
	}
	return 0
}

func toBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && x != "0"
	case int:
		return x != 0
	case float64:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32:
		return rv.Float() != 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func collectionLen(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// isBlank is the "nothing was sent" test used for dropping fields:
// nil, false, "", zero numbers and empty collections.
func isBlank(v any) bool {
	if s, ok := v.(string); ok {
		return s == ""
	}
	return !toBool(v)
}

// isEmpty additionally treats "0" as empty; used to skip record lookups.
func isEmpty(v any) bool {
	if s, ok := v.(string); ok {
		return s == "" || s == "0"
	}
	return !toBool(v)
}

// asList returns the elements of a slice or array value.
func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
