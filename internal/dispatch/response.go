package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one key/value pair of a Response.
type Field struct {
	Key   string
	Value any
}

// Response is a flat, ordered mapping from field names to scalar values
// (bool, int, float64, string). It encodes as a JSON object whose keys
// appear in insertion order.
type Response struct {
	fields []Field
}

// NewResponse returns an empty response.
func NewResponse() *Response {
	return &Response{}
}

// Set adds a field, or replaces the value in place if key already exists.
// It returns r for chaining.
func (r *Response) Set(key string, value any) *Response {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = value
			return r
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: value})
	return r
}

// Get returns the value stored under key.
func (r *Response) Get(key string) (any, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in insertion order.
func (r *Response) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Len returns the number of fields.
func (r *Response) Len() int {
	return len(r.fields)
}

// MarshalJSON implements json.Marshaler, preserving field order.
func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", f.Key, err)
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
