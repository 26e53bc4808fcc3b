package types

// FieldStore durably records field revisions for grids. The schema engine
// calls it after every committed mutation; failures are reported but never
// undo the in-memory change.
type FieldStore interface {
	// PersistField records the latest revision of a field. New fields are
	// appended after the grid's existing fields.
	PersistField(gridID string, field *Field) error

	// RemoveField deletes a field revision.
	// Returns ErrFieldNotFound if the store has no such field.
	RemoveField(gridID, fieldID string) error

	// ReorderFields rewrites the display order of a grid's fields.
	ReorderFields(gridID string, fieldIDs []string) error

	// LoadFields returns a grid's fields in display order. An unknown grid
	// yields an empty slice.
	LoadFields(gridID string) ([]*Field, error)
}

// Store is a FieldStore with an attach/detach lifecycle.
type Store interface {
	FieldStore

	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach flushes pending writes and releases backend resources.
	// Idempotent. After Detach, operations return ErrStoreDetached.
	Detach() error
}

// Notifier receives committed field changes. Notify must not block.
type Notifier interface {
	Notify(change FieldChange)
}

// IDGenerator produces globally unique identifiers for fields and options.
type IDGenerator interface {
	NewID() string
}
