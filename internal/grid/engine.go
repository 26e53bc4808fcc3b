// Package grid owns the field collections of grids and exposes the schema
// commands: create, update, delete, switch type, update type option, list,
// duplicate, and move.
//
// Each grid is served by its own Registry; commands against one Registry are
// serialized by its mutex and registries share no mutable state. The Engine
// routes commands by grid id and loads a grid's fields from the store the
// first time the grid is used.
package grid

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/gridfields/internal/idgen"
	"github.com/mesh-intelligence/gridfields/internal/logging"
	"github.com/mesh-intelligence/gridfields/internal/metrics"
	"github.com/mesh-intelligence/gridfields/internal/notify"
	"github.com/mesh-intelligence/gridfields/internal/options"
	"github.com/mesh-intelligence/gridfields/internal/switcher"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// Deps are the collaborators injected into registries. Nil members get
// defaults: no store, a discarding notifier, UUID v7 ids, a no-op logger and
// no metrics.
type Deps struct {
	Store    types.FieldStore
	Notifier types.Notifier
	IDs      types.IDGenerator
	Options  *options.Registry
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
}

func (d Deps) withDefaults() Deps {
	if d.Store == nil {
		d.Store = nopStore{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard{}
	}
	if d.IDs == nil {
		d.IDs = idgen.UUID{}
	}
	if d.Options == nil {
		d.Options = options.New(d.IDs)
	}
	d.Logger = logging.OrNop(d.Logger)
	return d
}

// Engine routes schema commands to per-grid registries.
type Engine struct {
	mu       sync.RWMutex
	grids    map[string]*Registry
	deps     Deps
	switcher *switcher.Switcher
}

// NewEngine returns an Engine using deps for every grid it serves.
func NewEngine(deps Deps) *Engine {
	deps = deps.withDefaults()
	return &Engine{
		grids:    make(map[string]*Registry),
		deps:     deps,
		switcher: switcher.New(deps.Options),
	}
}

// Grid returns the registry for gridID, loading its fields from the store
// on first use. Returns ErrInvalidGridID for an empty id.
func (e *Engine) Grid(gridID string) (*Registry, error) {
	if gridID == "" {
		return nil, types.ErrInvalidGridID
	}

	e.mu.RLock()
	r, ok := e.grids[gridID]
	e.mu.RUnlock()
	if ok {
		return r, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.grids[gridID]; ok {
		return r, nil
	}

	fields, err := e.deps.Store.LoadFields(gridID)
	if err != nil {
		return nil, fmt.Errorf("loading fields of grid %s: %w", gridID, err)
	}
	r = newRegistry(gridID, fields, e.deps, e.switcher)
	e.grids[gridID] = r
	e.deps.Logger.Debug("grid loaded",
		zap.String("grid_id", gridID),
		zap.Int("fields", len(fields)),
	)
	return r, nil
}

// CreateField appends a field to the grid.
func (e *Engine) CreateField(gridID string, params types.CreateFieldParams) (*types.Field, error) {
	r, err := e.Grid(gridID)
	if err != nil {
		return nil, err
	}
	return r.CreateField(params)
}

// UpdateField applies a sparse changeset to a field of the grid.
func (e *Engine) UpdateField(gridID string, changeset types.FieldChangeset) (*types.Field, error) {
	r, err := e.Grid(gridID)
	if err != nil {
		return nil, err
	}
	return r.UpdateField(changeset)
}

// DeleteField removes a field from the grid.
func (e *Engine) DeleteField(gridID, fieldID string) error {
	r, err := e.Grid(gridID)
	if err != nil {
		return err
	}
	return r.DeleteField(fieldID)
}

// SwitchFieldType changes a field's type.
func (e *Engine) SwitchFieldType(gridID, fieldID string, to types.FieldType) (*types.Field, error) {
	r, err := e.Grid(gridID)
	if err != nil {
		return nil, err
	}
	return r.SwitchFieldType(fieldID, to)
}

// UpdateTypeOption replaces the configuration of a field's current type.
func (e *Engine) UpdateTypeOption(gridID, fieldID string, raw []byte) error {
	r, err := e.Grid(gridID)
	if err != nil {
		return err
	}
	return r.UpdateTypeOption(fieldID, raw)
}

// ListFields returns the grid's fields in display order.
func (e *Engine) ListFields(gridID string) ([]*types.Field, error) {
	r, err := e.Grid(gridID)
	if err != nil {
		return nil, err
	}
	return r.ListFields(), nil
}

// GetField returns one field of the grid.
func (e *Engine) GetField(gridID, fieldID string) (*types.Field, error) {
	r, err := e.Grid(gridID)
	if err != nil {
		return nil, err
	}
	return r.GetField(fieldID)
}

// DuplicateField copies a field and inserts the copy after it.
func (e *Engine) DuplicateField(gridID, fieldID string) (*types.Field, error) {
	r, err := e.Grid(gridID)
	if err != nil {
		return nil, err
	}
	return r.DuplicateField(fieldID)
}

// MoveField moves a field to a new display position.
func (e *Engine) MoveField(gridID, fieldID string, to int) error {
	r, err := e.Grid(gridID)
	if err != nil {
		return err
	}
	return r.MoveField(fieldID, to)
}

// nopStore is used when no store is configured.
type nopStore struct{}

func (nopStore) PersistField(string, *types.Field) error   { return nil }
func (nopStore) RemoveField(string, string) error          { return nil }
func (nopStore) ReorderFields(string, []string) error      { return nil }
func (nopStore) LoadFields(string) ([]*types.Field, error) { return nil, nil }
