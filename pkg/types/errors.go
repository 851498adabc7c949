package types

import "errors"

// Command errors. Each one maps to exactly one operator diagnostic.
var (
	ErrMissingTypeName       = errors.New("type name missing")
	ErrUnknownEntityType     = errors.New("unknown entity type")
	ErrMissingID             = errors.New("instance id missing")
	ErrNoSuchInstance        = errors.New("no such instance")
	ErrMissingAttributeName  = errors.New("attribute name missing")
	ErrMissingAttributeValue = errors.New("attribute value missing")
	ErrInvalidPayload        = errors.New("invalid payload")
	ErrUnrecognizedOperation = errors.New("unrecognized operation")
)

// Entity errors.
var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrMissingTypeTag   = errors.New("type tag missing")
	ErrInvalidValue     = errors.New("invalid field value")
	ErrImmutableField   = errors.New("field is immutable")
	ErrDetached         = errors.New("entity is not registered with a store")
)

// Storage errors.
var (
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	ErrStoreClosed     = errors.New("store is closed")
)
