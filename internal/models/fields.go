package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Fields is an insertion-ordered mapping from field name to Value.
// Setting an existing name replaces its value in place.
type Fields struct {
	names  []string
	values map[string]types.Value
}

// NewFields returns an empty Fields.
func NewFields() *Fields {
	return &Fields{values: make(map[string]types.Value)}
}

// Set stores v under name, appending name if it is new.
func (f *Fields) Set(name string, v types.Value) {
	if f.values == nil {
		f.values = make(map[string]types.Value)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = v
}

// Get returns the value stored under name.
func (f *Fields) Get(name string) (types.Value, bool) {
	if f == nil {
		return types.Value{}, false
	}
	v, ok := f.values[name]
	return v, ok
}

// Names returns the field names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// Clone returns an independent copy of f.
func (f *Fields) Clone() *Fields {
	out := NewFields()
	if f == nil {
		return out
	}
	for _, name := range f.names {
		out.Set(name, f.values[name])
	}
	return out
}

// MarshalJSON encodes f as a JSON object with keys in insertion order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if f != nil {
		for i, name := range f.names {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(name)
			if err != nil {
				return nil, err
			}
			val, err := f.values[name].MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	out := NewFields()
	err := DecodeObject(data, func(key string, raw json.RawMessage) error {
		var v types.Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, v)
		return nil
	})
	if err != nil {
		return err
	}
	*f = *out
	return nil
}

// DecodeObject walks the members of a single JSON object in document
// order, calling fn with each key and its undecoded value. Anything other
// than exactly one object, including trailing data, is an error.
func DecodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading object start: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, found %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, found %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("reading value for %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading object end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after object")
	}
	return nil
}
