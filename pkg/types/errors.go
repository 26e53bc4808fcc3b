package types

import "errors"

// Schema command errors.
var (
	ErrFieldNotFound        = errors.New("field not found")
	ErrFieldFrozen          = errors.New("field is frozen")
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrMalformedTypeOption  = errors.New("malformed type option")
	ErrDuplicateOptionID    = errors.New("duplicate option id")
	ErrInvalidOptionName    = errors.New("option name must not be empty")
	ErrInvalidName          = errors.New("invalid name")
	ErrInvalidWidth         = errors.New("width must be positive")
	ErrGridMismatch         = errors.New("changeset targets a different grid")
	ErrInvalidPosition      = errors.New("position out of range")
	ErrInvalidGridID        = errors.New("grid id must not be empty")
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
