package filter

import (
	"net/url"
	"strings"
)

// ValueProvider supplies raw request values by key. A missing key yields nil.
type ValueProvider interface {
	Get(key string) any
}

// Values is a ValueProvider over decoded JSON params.
type Values map[string]any

func (v Values) Get(key string) any { return v[key] }
func (v Values) Len() int           { return len(v) }

// URLValues is a ValueProvider over a query string. A key sent once yields a
// string; a repeated key, or the "key[]" form, yields []string.
type URLValues url.Values

func (u URLValues) Get(key string) any {
	if vs, ok := u[key+"[]"]; ok {
		return append([]string(nil), vs...)
	}
	vs, ok := u[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	if len(vs) == 1 {
		return vs[0]
	}
	return append([]string(nil), vs...)
}

func (u URLValues) Len() int { return len(u) }

// Without returns a copy of u without the given keys (reserved params such as
// "sort" or "resource").
func (u URLValues) Without(keys ...string) URLValues {
	out := make(URLValues, len(u))
	for k, v := range u {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
		for name := range out {
			if strings.HasPrefix(name, k+"[") {
				delete(out, name)
			}
		}
	}
	return out
}

func providerEmpty(p ValueProvider) bool {
	if p == nil {
		return true
	}
	if l, ok := p.(interface{ Len() int }); ok {
		return l.Len() == 0
	}
	return false
}
