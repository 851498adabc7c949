package types

import (
	"bytes"
	"errors"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

// Value kinds. KindRaw carries any non-scalar JSON value verbatim so that
// snapshots written by other tools reload without loss.
const (
	KindString ValueKind = iota
	KindInt
	KindFloat
	KindRaw
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a tagged scalar stored in an entity field.
// The zero Value is the empty string.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	raw  json.RawMessage
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue returns an integer Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a float Value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// RawValue returns a Value holding a JSON document verbatim.
// Returns ErrInvalidValue if data is not valid JSON.
func RawValue(data []byte) (Value, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return Value{kind: KindRaw, raw: json.RawMessage(buf.Bytes())}, nil
}

// Kind reports the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Int returns the integer payload and whether v is an integer.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float payload and whether v is a float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// String returns the bare textual form: strings unquoted, numbers by
// their literal, raw values as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindRaw:
		return string(v.raw)
	default:
		return v.s
	}
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindRaw:
		return bytes.Equal(v.raw, o.raw)
	default:
		return v.s == o.s
	}
}

// MarshalJSON encodes v as a JSON scalar. Floats always carry a decimal
// point or exponent so they decode back as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("%w: %v is not representable", ErrInvalidValue, v.f)
		}
		return []byte(formatFloat(v.f)), nil
	case KindRaw:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON decodes a JSON value. Strings and numbers become scalar
// variants; integral number literals become integers. Anything else is
// kept as a raw value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty document", ErrInvalidValue)
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*v = StringValue(s)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		parsed, err := ParseNumber(string(data))
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	default:
		raw, err := RawValue(data)
		if err != nil {
			return err
		}
		*v = raw
		return nil
	}
}

// ParseNumber converts a JSON number literal into an integer or float Value.
// An integral literal outside the int64 range is kept verbatim as a raw value.
func ParseNumber(lit string) (Value, error) {
	i, err := strconv.ParseInt(lit, 10, 64)
	if err == nil {
		return IntValue(i), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return RawValue([]byte(lit))
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, lit)
	}
	return FloatValue(f), nil
}

// formatFloat follows encoding/json's choice between plain and exponent
// notation, then forces a decimal point onto integral results.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
