package types

import (
	"bytes"
	"encoding/json"
)

// DefaultFieldWidth is used when a field is created without a width.
const DefaultFieldWidth = 150

// Field is one column definition of a grid.
type Field struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        FieldType `json:"field_type"`

	// TypeOptions holds the encoded configuration for the current type and
	// for every type the field previously had, so switching back restores
	// the earlier configuration. Entries are never evicted.
	TypeOptions map[FieldType]json.RawMessage `json:"type_options"`

	Frozen  bool `json:"frozen"`
	Visible bool `json:"visible"`
	Width   int  `json:"width"`
}

// TypeOption returns the encoded configuration of the current type, or nil
// if none is stored.
func (f *Field) TypeOption() json.RawMessage {
	if f.TypeOptions == nil {
		return nil
	}
	return f.TypeOptions[f.Type]
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	cp := *f
	cp.TypeOptions = make(map[FieldType]json.RawMessage, len(f.TypeOptions))
	for ft, blob := range f.TypeOptions {
		cp.TypeOptions[ft] = bytes.Clone(blob)
	}
	return &cp
}

// CreateFieldParams describes a field to append to a grid.
// TypeOption is optional; when empty the codec default for Type is used.
type CreateFieldParams struct {
	GridID      string
	Name        string
	Description string
	Type        FieldType
	TypeOption  []byte
	Width       int   // 0 means DefaultFieldWidth.
	Visible     *bool // nil means visible.
}

// FieldChangeset is a sparse update. Nil members mean "no change".
type FieldChangeset struct {
	FieldID     string
	GridID      string
	Name        *string
	Description *string
	Frozen      *bool
	Width       *int
	Visible     *bool
	TypeOption  []byte // replaces the current type's configuration when non-nil
}

// IsEmpty reports whether the changeset carries no updates.
func (c FieldChangeset) IsEmpty() bool {
	return c.Name == nil &&
		c.Description == nil &&
		c.Frozen == nil &&
		c.Width == nil &&
		c.Visible == nil &&
		c.TypeOption == nil
}

// ChangeKind classifies a field change notification.
type ChangeKind string

// Change kinds emitted by the schema engine.
const (
	ChangeCreated           ChangeKind = "created"
	ChangeUpdated           ChangeKind = "updated"
	ChangeDeleted           ChangeKind = "deleted"
	ChangeSwitched          ChangeKind = "switched"
	ChangeTypeOptionUpdated ChangeKind = "type_option_updated"
	ChangeMoved             ChangeKind = "moved"
)

// FieldChange is handed to the Notifier after a mutation has been committed.
type FieldChange struct {
	GridID  string
	FieldID string
	Kind    ChangeKind
	Field   *Field // nil for ChangeDeleted.

	// Checksum fingerprints the current type option blob.
	Checksum uint64

	// Degraded is set when the store rejected the revision. The in-memory
	// schema keeps the change.
	Degraded bool
}
