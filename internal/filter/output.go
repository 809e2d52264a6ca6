package filter

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Output is the ordered result of a resolution: field name -> value.
// Keys keep the position of their first write.
type Output struct {
	keys   []string
	values map[string]any
}

func newOutput() *Output {
	return &Output{values: make(map[string]any)}
}

func (o *Output) set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Output) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Output) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o *Output) Len() int { return len(o.keys) }

// Keys returns the keys in write order.
func (o *Output) Keys() []string {
	return append([]string(nil), o.keys...)
}

// All iterates entries in write order.
func (o *Output) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// Map returns an unordered copy, handy for query builders.
func (o *Output) Map() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// MarshalJSON keeps the write order of keys.
func (o *Output) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
