package models

import (
	"fmt"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Kind names a registered entity type.
type Kind string

// Registered entity kinds.
const (
	KindBaseModel Kind = "BaseModel"
	KindUser      Kind = "User"
	KindPlace     Kind = "Place"
	KindState     Kind = "State"
	KindCity      Kind = "City"
	KindAmenity   Kind = "Amenity"
	KindReview    Kind = "Review"
)

// kinds lists every registered kind in a stable order.
var kinds = []Kind{
	KindBaseModel,
	KindUser,
	KindPlace,
	KindState,
	KindCity,
	KindAmenity,
	KindReview,
}

// Kinds returns all registered kinds.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Lookup resolves a type name to its Kind.
// Returns ErrUnknownEntityType if name is not registered.
func Lookup(name string) (Kind, error) {
	switch k := Kind(name); k {
	case KindBaseModel, KindUser, KindPlace, KindState, KindCity, KindAmenity, KindReview:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnknownEntityType, name)
	}
}

func (k Kind) String() string { return string(k) }

// Defaults returns the kind's class-level attribute defaults. They are
// visible through Entity.Get but are not instance fields, so they are
// neither rendered nor persisted.
func (k Kind) Defaults() *Fields {
	f := NewFields()
	switch k {
	case KindUser:
		f.Set("email", types.StringValue(""))
		f.Set("password", types.StringValue(""))
		f.Set("first_name", types.StringValue(""))
		f.Set("last_name", types.StringValue(""))
	case KindPlace:
		f.Set("city_id", types.StringValue(""))
		f.Set("user_id", types.StringValue(""))
		f.Set("name", types.StringValue(""))
		f.Set("description", types.StringValue(""))
		f.Set("number_rooms", types.IntValue(0))
		f.Set("number_bathrooms", types.IntValue(0))
		f.Set("max_guest", types.IntValue(0))
		f.Set("price_by_night", types.IntValue(0))
		f.Set("latitude", types.FloatValue(0))
		f.Set("longitude", types.FloatValue(0))
		empty, _ := types.RawValue([]byte("[]"))
		f.Set("amenity_ids", empty)
	case KindState:
		f.Set("name", types.StringValue(""))
	case KindCity:
		f.Set("state_id", types.StringValue(""))
		f.Set("name", types.StringValue(""))
	case KindAmenity:
		f.Set("name", types.StringValue(""))
	case KindReview:
		f.Set("place_id", types.StringValue(""))
		f.Set("user_id", types.StringValue(""))
		f.Set("text", types.StringValue(""))
	}
	return f
}

// New constructs a fresh entity of kind k and registers it with r.
func (k Kind) New(r Registrar) *Entity {
	ts := now()
	e := &Entity{
		kind:      k,
		id:        generateUUID(),
		createdAt: ts,
		updatedAt: ts,
		attrs:     NewFields(),
		owner:     r,
	}
	if r != nil {
		r.Register(e)
	}
	return e
}

// FromFields reconstructs an entity of kind k from its serialized form.
// The id and timestamps are taken verbatim and must be present; the type
// tag is skipped; every other field is copied in order. The entity is not
// registered anywhere.
func (k Kind) FromFields(f *Fields) (*Entity, error) {
	e := &Entity{kind: k, attrs: NewFields()}
	for _, name := range f.Names() {
		v, _ := f.Get(name)
		switch name {
		case TypeTagField:
			continue
		case FieldID:
			e.id = v.String()
		case FieldCreatedAt, FieldUpdatedAt:
			ts, err := ParseTimestamp(v.String())
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", k, name, err)
			}
			if name == FieldCreatedAt {
				e.createdAt = ts
			} else {
				e.updatedAt = ts
			}
		default:
			e.attrs.Set(name, v)
		}
	}
	required := []struct {
		name    string
		missing bool
	}{
		{FieldID, e.id == ""},
		{FieldCreatedAt, e.createdAt.IsZero()},
		{FieldUpdatedAt, e.updatedAt.IsZero()},
	}
	for _, r := range required {
		if r.missing {
			return nil, fmt.Errorf("%s: %w: missing %s", k, types.ErrInvalidValue, r.name)
		}
	}
	return e, nil
}

// Decode reconstructs an entity from serialized fields, choosing the kind
// from the type tag. Returns ErrMissingTypeTag or ErrUnknownEntityType when
// the tag is absent or unregistered.
func Decode(f *Fields) (*Entity, error) {
	tag, ok := f.Get(TypeTagField)
	if !ok {
		return nil, types.ErrMissingTypeTag
	}
	k, err := Lookup(tag.String())
	if err != nil {
		return nil, err
	}
	return k.FromFields(f)
}
