// Package models defines the entity base shared by every record kind and
// the registry of recognized kinds.
package models

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Reserved field names.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	TypeTagField   = "__class__"
)

// TimestampLayout is the canonical textual timestamp form.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// parseLayout accepts the canonical form with any number of fractional
// digits, or none.
const parseLayout = "2006-01-02T15:04:05"

// now returns the current time at the resolution timestamps are stored
// with. Tests replace it to control the clock.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Registrar is the store an entity registers with and persists through.
type Registrar interface {
	Register(e *Entity)
	Persist() error
}

// Entity is a record of some Kind: an immutable id, two timestamps, and
// an open set of named fields.
type Entity struct {
	kind      Kind
	id        string
	createdAt time.Time
	updatedAt time.Time
	attrs     *Fields
	owner     Registrar
}

// Key returns the store key "<Kind>.<id>".
func Key(k Kind, id string) string {
	return k.String() + "." + id
}

// Kind returns the entity's registered kind.
func (e *Entity) Kind() Kind { return e.kind }

// ID returns the immutable entity id.
func (e *Entity) ID() string { return e.id }

// CreatedAt returns the creation time, UTC at microsecond resolution.
func (e *Entity) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns the time of the last save, UTC at microsecond resolution.
func (e *Entity) UpdatedAt() time.Time { return e.updatedAt }

// Key returns the entity's store key.
func (e *Entity) Key() string { return Key(e.kind, e.id) }

// Bind attaches the entity to the store that persists it.
func (e *Entity) Bind(r Registrar) { e.owner = r }

// Attributes returns a copy of the entity's non-reserved fields.
func (e *Entity) Attributes() *Fields { return e.attrs.Clone() }

// Get returns a field value. Reserved fields are rendered to text, and
// kind defaults are consulted when the entity has no such field.
func (e *Entity) Get(name string) (types.Value, bool) {
	switch name {
	case FieldID:
		return types.StringValue(e.id), true
	case FieldCreatedAt:
		return types.StringValue(FormatTimestamp(e.createdAt)), true
	case FieldUpdatedAt:
		return types.StringValue(FormatTimestamp(e.updatedAt)), true
	}
	if v, ok := e.attrs.Get(name); ok {
		return v, true
	}
	return e.kind.Defaults().Get(name)
}

// Set assigns a field without touching updated_at.
// Returns ErrImmutableField for the id, the timestamps, and the type tag.
func (e *Entity) Set(name string, v types.Value) error {
	switch name {
	case FieldID, FieldCreatedAt, FieldUpdatedAt, TypeTagField:
		return fmt.Errorf("%w: %s", types.ErrImmutableField, name)
	}
	e.attrs.Set(name, v)
	return nil
}

// Touch advances updated_at to now, strictly forward of its prior value.
func (e *Entity) Touch() {
	ts := now()
	if !ts.After(e.updatedAt) {
		ts = e.updatedAt.Add(time.Microsecond)
	}
	e.updatedAt = ts
}

// Save touches the entity and persists the whole store it belongs to.
func (e *Entity) Save() error {
	if e.owner == nil {
		return types.ErrDetached
	}
	e.Touch()
	return e.owner.Persist()
}

// String renders "[Kind] (id) {fields}" with fields in insertion order.
func (e *Entity) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[%s] (%s) {", e.kind, e.id)
	f := e.instanceFields()
	for i, name := range f.Names() {
		if i > 0 {
			buf.WriteString(", ")
		}
		v, _ := f.Get(name)
		fmt.Fprintf(&buf, "%q: %s", name, renderValue(v))
	}
	buf.WriteByte('}')
	return buf.String()
}

// ToFields serializes the entity for a snapshot: every field, the type
// tag, and both timestamps in canonical text. Kind.FromFields inverts it.
func (e *Entity) ToFields() *Fields {
	f := e.instanceFields()
	f.Set(TypeTagField, types.StringValue(e.kind.String()))
	return f
}

func (e *Entity) instanceFields() *Fields {
	f := NewFields()
	f.Set(FieldID, types.StringValue(e.id))
	f.Set(FieldCreatedAt, types.StringValue(FormatTimestamp(e.createdAt)))
	f.Set(FieldUpdatedAt, types.StringValue(FormatTimestamp(e.updatedAt)))
	for _, name := range e.attrs.Names() {
		v, _ := e.attrs.Get(name)
		f.Set(name, v)
	}
	return f
}

func renderValue(v types.Value) string {
	data, err := v.MarshalJSON()
	if err != nil {
		return v.String()
	}
	return string(data)
}

// FormatTimestamp renders t in the canonical layout, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses the canonical layout, or RFC 3339 as written by
// other tools. The result is UTC at microsecond resolution.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		var rfcErr error
		t, rfcErr = time.Parse(time.RFC3339Nano, s)
		if rfcErr != nil {
			return time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidTimestamp, s)
		}
	}
	return t.UTC().Truncate(time.Microsecond), nil
}

// generateUUID generates a new UUID v4 for entity ids.
func generateUUID() string {
	return uuid.NewString()
}
