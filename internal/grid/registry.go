package grid

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/gridfields/internal/options"
	"github.com/mesh-intelligence/gridfields/internal/switcher"
	"github.com/mesh-intelligence/gridfields/internal/typeoption"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// Command names used for metrics and logs.
const (
	cmdCreate     = "create_field"
	cmdUpdate     = "update_field"
	cmdDelete     = "delete_field"
	cmdSwitch     = "switch_field_type"
	cmdTypeOption = "update_type_option"
	cmdDuplicate  = "duplicate_field"
	cmdMove       = "move_field"
)

// Registry holds the ordered fields of one grid. Every command either
// commits completely or leaves the registry unchanged. Returned fields are
// copies.
type Registry struct {
	mu       sync.Mutex
	gridID   string
	fields   []*types.Field
	deps     Deps
	switcher *switcher.Switcher
}

// NewRegistry returns a registry for gridID seeded with fields, in order.
func NewRegistry(gridID string, fields []*types.Field, deps Deps) *Registry {
	deps = deps.withDefaults()
	return newRegistry(gridID, fields, deps, switcher.New(deps.Options))
}

func newRegistry(gridID string, fields []*types.Field, deps Deps, sw *switcher.Switcher) *Registry {
	r := &Registry{
		gridID:   gridID,
		fields:   make([]*types.Field, 0, len(fields)),
		deps:     deps,
		switcher: sw,
	}
	for _, f := range fields {
		r.fields = append(r.fields, f.Clone())
	}
	deps.Metrics.FieldCount(gridID, len(r.fields))
	return r
}

// GridID returns the id of the grid this registry serves.
func (r *Registry) GridID() string {
	return r.gridID
}

// Len returns the number of fields.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fields)
}

// ListFields returns copies of all fields in display order.
func (r *Registry) ListFields() []*types.Field {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*types.Field, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Clone()
	}
	return out
}

// GetField returns a copy of the field with the given id.
// Returns ErrFieldNotFound if no such field exists.
func (r *Registry) GetField(fieldID string) (*types.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, err := r.indexOf(fieldID)
	if err != nil {
		return nil, err
	}
	return r.fields[i].Clone(), nil
}

// CreateField appends a new field with a fresh id. Identical params create
// distinct fields; nothing is deduplicated.
func (r *Registry) CreateField(params types.CreateFieldParams) (*types.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.createField(params)
	r.deps.Metrics.Command(cmdCreate, err)
	return f, err
}

func (r *Registry) createField(params types.CreateFieldParams) (*types.Field, error) {
	if params.GridID != "" && params.GridID != r.gridID {
		return nil, types.ErrGridMismatch
	}
	if params.Name == "" {
		return nil, types.ErrInvalidName
	}
	if !types.IsValidFieldType(params.Type) {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFieldType, params.Type)
	}
	if params.Width < 0 {
		return nil, types.ErrInvalidWidth
	}

	blob, err := r.initialTypeOption(params.Type, params.TypeOption)
	if err != nil {
		return nil, err
	}

	width := params.Width
	if width == 0 {
		width = types.DefaultFieldWidth
	}
	visible := true
	if params.Visible != nil {
		visible = *params.Visible
	}

	f := &types.Field{
		ID:          r.deps.IDs.NewID(),
		Name:        params.Name,
		Description: params.Description,
		Type:        params.Type,
		TypeOptions: map[types.FieldType]json.RawMessage{params.Type: blob},
		Visible:     visible,
		Width:       width,
	}
	r.fields = append(r.fields, f)

	r.committed(types.ChangeCreated, f, func() error {
		return r.deps.Store.PersistField(r.gridID, f.Clone())
	})
	return f.Clone(), nil
}

// UpdateField applies the populated members of changeset. An empty changeset
// returns the field unchanged and emits nothing. Frozen fields still accept
// name, description, frozen, width, and visibility changes but reject a type
// option.
func (r *Registry) UpdateField(changeset types.FieldChangeset) (*types.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.updateField(changeset)
	r.deps.Metrics.Command(cmdUpdate, err)
	return f, err
}

func (r *Registry) updateField(cs types.FieldChangeset) (*types.Field, error) {
	if cs.GridID != "" && cs.GridID != r.gridID {
		return nil, types.ErrGridMismatch
	}
	i, err := r.indexOf(cs.FieldID)
	if err != nil {
		return nil, err
	}
	current := r.fields[i]
	if cs.IsEmpty() {
		return current.Clone(), nil
	}

	next := current.Clone()
	if cs.Name != nil {
		if *cs.Name == "" {
			return nil, types.ErrInvalidName
		}
		next.Name = *cs.Name
	}
	if cs.Description != nil {
		next.Description = *cs.Description
	}
	if cs.Frozen != nil {
		next.Frozen = *cs.Frozen
	}
	if cs.Width != nil {
		if *cs.Width <= 0 {
			return nil, types.ErrInvalidWidth
		}
		next.Width = *cs.Width
	}
	if cs.Visible != nil {
		next.Visible = *cs.Visible
	}
	if cs.TypeOption != nil {
		// Checked against the state before this changeset.
		if current.Frozen {
			return nil, types.ErrFieldFrozen
		}
		blob, err := r.canonicalTypeOption(next.Type, cs.TypeOption)
		if err != nil {
			return nil, err
		}
		next.TypeOptions[next.Type] = blob
	}

	r.fields[i] = next
	r.committed(types.ChangeUpdated, next, func() error {
		return r.deps.Store.PersistField(r.gridID, next.Clone())
	})
	return next.Clone(), nil
}

// DeleteField removes a field. Deleting an unknown or already deleted id
// returns ErrFieldNotFound.
func (r *Registry) DeleteField(fieldID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.deleteField(fieldID)
	r.deps.Metrics.Command(cmdDelete, err)
	return err
}

func (r *Registry) deleteField(fieldID string) error {
	i, err := r.indexOf(fieldID)
	if err != nil {
		return err
	}
	removed := r.fields[i]
	r.fields = slices.Delete(r.fields, i, i+1)

	r.committed(types.ChangeDeleted, removed, func() error {
		return r.deps.Store.RemoveField(r.gridID, fieldID)
	})
	return nil
}

// SwitchFieldType changes a field's type. The configuration for the new type
// comes from the switcher; the previous configuration stays cached under the
// old type so a later switch back restores it. Switching to the current type
// is a no-op.
func (r *Registry) SwitchFieldType(fieldID string, to types.FieldType) (*types.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.switchFieldType(fieldID, to)
	r.deps.Metrics.Command(cmdSwitch, err)
	return f, err
}

func (r *Registry) switchFieldType(fieldID string, to types.FieldType) (*types.Field, error) {
	i, err := r.indexOf(fieldID)
	if err != nil {
		return nil, err
	}
	current := r.fields[i]
	if current.Frozen {
		return nil, types.ErrFieldFrozen
	}

	blob, err := r.switcher.Switch(current.Type, current.TypeOptions, to)
	if err != nil {
		return nil, err
	}
	if to == current.Type {
		return current.Clone(), nil
	}

	next := current.Clone()
	if next.TypeOptions[current.Type] == nil {
		prev, err := typeoption.DefaultBytes(current.Type)
		if err != nil {
			return nil, err
		}
		next.TypeOptions[current.Type] = prev
	}
	next.TypeOptions[to] = slices.Clone(blob)
	next.Type = to

	r.fields[i] = next
	r.deps.Logger.Debug("field type switched",
		zap.String("grid_id", r.gridID),
		zap.String("field_id", fieldID),
		zap.String("from", current.Type.String()),
		zap.String("to", to.String()),
	)
	r.committed(types.ChangeSwitched, next, func() error {
		return r.deps.Store.PersistField(r.gridID, next.Clone())
	})
	return next.Clone(), nil
}

// UpdateTypeOption replaces the configuration of the field's current type
// with raw, which must decode under that type. On failure the field is left
// unchanged. Returns ErrFieldFrozen for frozen fields.
func (r *Registry) UpdateTypeOption(fieldID string, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.updateTypeOption(fieldID, raw)
	r.deps.Metrics.Command(cmdTypeOption, err)
	return err
}

func (r *Registry) updateTypeOption(fieldID string, raw []byte) error {
	i, err := r.indexOf(fieldID)
	if err != nil {
		return err
	}
	current := r.fields[i]
	if current.Frozen {
		return types.ErrFieldFrozen
	}
	blob, err := r.canonicalTypeOption(current.Type, raw)
	if err != nil {
		return err
	}

	next := current.Clone()
	next.TypeOptions[next.Type] = blob
	r.fields[i] = next
	r.committed(types.ChangeTypeOptionUpdated, next, func() error {
		return r.deps.Store.PersistField(r.gridID, next.Clone())
	})
	return nil
}

// DuplicateField copies a field, including its cached configurations, under
// a fresh id and inserts the copy directly after the original.
func (r *Registry) DuplicateField(fieldID string) (*types.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.duplicateField(fieldID)
	r.deps.Metrics.Command(cmdDuplicate, err)
	return f, err
}

func (r *Registry) duplicateField(fieldID string) (*types.Field, error) {
	i, err := r.indexOf(fieldID)
	if err != nil {
		return nil, err
	}
	dup := r.fields[i].Clone()
	dup.ID = r.deps.IDs.NewID()
	dup.Name = dup.Name + " (copy)"
	r.fields = slices.Insert(r.fields, i+1, dup)

	order := r.fieldIDs()
	r.committed(types.ChangeCreated, dup, func() error {
		if err := r.deps.Store.PersistField(r.gridID, dup.Clone()); err != nil {
			return err
		}
		return r.deps.Store.ReorderFields(r.gridID, order)
	})
	return dup.Clone(), nil
}

// MoveField moves a field to display position to (0-based).
// Returns ErrInvalidPosition if to is out of range.
func (r *Registry) MoveField(fieldID string, to int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.moveField(fieldID, to)
	r.deps.Metrics.Command(cmdMove, err)
	return err
}

func (r *Registry) moveField(fieldID string, to int) error {
	i, err := r.indexOf(fieldID)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(r.fields) {
		return fmt.Errorf("%w: %d of %d", types.ErrInvalidPosition, to, len(r.fields))
	}
	if to == i {
		return nil
	}

	f := r.fields[i]
	r.fields = slices.Delete(r.fields, i, i+1)
	r.fields = slices.Insert(r.fields, to, f)

	order := r.fieldIDs()
	r.committed(types.ChangeMoved, f, func() error {
		return r.deps.Store.ReorderFields(r.gridID, order)
	})
	return nil
}

// initialTypeOption returns the configuration a new field of type ft starts
// with: ft's default when raw is empty, otherwise canonicalTypeOption(raw).
func (r *Registry) initialTypeOption(ft types.FieldType, raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return typeoption.DefaultBytes(ft)
	}
	return r.canonicalTypeOption(ft, raw)
}

// canonicalTypeOption returns the canonical bytes for raw under ft. Empty
// input is malformed. Select option ids must be unique.
func (r *Registry) canonicalTypeOption(ft types.FieldType, raw []byte) ([]byte, error) {
	blob, opt, err := typeoption.Canonical(ft, raw)
	if err != nil {
		return nil, err
	}
	if err := options.ValidateTypeOption(opt); err != nil {
		return nil, err
	}
	return blob, nil
}

// committed runs after a mutation is applied in memory: it hands the
// revision to the store and then notifies. A store failure is logged and
// flagged on the notification but never rolls back the change.
func (r *Registry) committed(kind types.ChangeKind, f *types.Field, persist func() error) {
	degraded := false
	if err := persist(); err != nil {
		degraded = true
		r.deps.Metrics.PersistFailed()
		r.deps.Logger.Warn("failed to persist field revision",
			zap.String("grid_id", r.gridID),
			zap.String("field_id", f.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	r.deps.Metrics.FieldCount(r.gridID, len(r.fields))

	change := types.FieldChange{
		GridID:   r.gridID,
		FieldID:  f.ID,
		Kind:     kind,
		Checksum: typeoption.Fingerprint(f.TypeOption()),
		Degraded: degraded,
	}
	if kind != types.ChangeDeleted {
		change.Field = f.Clone()
	}
	r.deps.Notifier.Notify(change)
}

func (r *Registry) indexOf(fieldID string) (int, error) {
	i := slices.IndexFunc(r.fields, func(f *types.Field) bool { return f.ID == fieldID })
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", types.ErrFieldNotFound, fieldID)
	}
	return i, nil
}

func (r *Registry) fieldIDs() []string {
	ids := make([]string, len(r.fields))
	for i, f := range r.fields {
		ids[i] = f.ID
	}
	return ids
}
