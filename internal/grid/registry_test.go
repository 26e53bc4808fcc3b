package grid

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gridfields/internal/idgen"
	"github.com/mesh-intelligence/gridfields/internal/notify"
	"github.com/mesh-intelligence/gridfields/internal/typeoption"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

const testGrid = "grid-1"

// memStore records what the registry hands to the store.
type memStore struct {
	mu        sync.Mutex
	fields    map[string]map[string]*types.Field
	order     map[string][]string
	persisted int
	removed   []string
	fail      error
}

func newMemStore() *memStore {
	return &memStore{
		fields: make(map[string]map[string]*types.Field),
		order:  make(map[string][]string),
	}
}

func (s *memStore) PersistField(gridID string, f *types.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if s.fields[gridID] == nil {
		s.fields[gridID] = make(map[string]*types.Field)
	}
	if _, ok := s.fields[gridID][f.ID]; !ok {
		s.order[gridID] = append(s.order[gridID], f.ID)
	}
	s.fields[gridID][f.ID] = f
	s.persisted++
	return nil
}

func (s *memStore) RemoveField(gridID, fieldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.fields[gridID], fieldID)
	s.removed = append(s.removed, fieldID)
	return nil
}

func (s *memStore) ReorderFields(gridID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.order[gridID] = append([]string(nil), ids...)
	return nil
}

func (s *memStore) LoadFields(gridID string) ([]*types.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Field
	for _, id := range s.order[gridID] {
		if f, ok := s.fields[gridID][id]; ok {
			out = append(out, f.Clone())
		}
	}
	return out, nil
}

type fixture struct {
	reg      *Registry
	store    *memStore
	notifier *notify.Channel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	ch := notify.NewChannel(64, nil, nil)
	reg := NewRegistry(testGrid, nil, Deps{
		Store:    store,
		Notifier: ch,
		IDs:      idgen.NewSequence("fld"),
	})
	return &fixture{reg: reg, store: store, notifier: ch}
}

func (fx *fixture) create(t *testing.T, name string, ft types.FieldType) *types.Field {
	t.Helper()
	f, err := fx.reg.CreateField(types.CreateFieldParams{GridID: testGrid, Name: name, Type: ft})
	require.NoError(t, err)
	return f
}

func ptr[T any](v T) *T { return &v }

func selectRaw(t *testing.T, ft types.FieldType, opts ...types.SelectOption) []byte {
	t.Helper()
	opt, err := types.NewSelectTypeOption(ft, types.SelectTypeOption{Options: opts})
	require.NoError(t, err)
	data, err := typeoption.Encode(ft, opt)
	require.NoError(t, err)
	return data
}

func decodeSelect(t *testing.T, f *types.Field) types.SelectTypeOption {
	t.Helper()
	opt, err := typeoption.Decode(f.Type, f.TypeOption())
	require.NoError(t, err)
	sel, ok := types.SelectOptions(opt)
	require.True(t, ok)
	return sel
}

func TestCreateFieldDefaults(t *testing.T) {
	fx := newFixture(t)

	f := fx.create(t, "Title", types.FieldTypeText)
	assert.Equal(t, "fld-1", f.ID)
	assert.Equal(t, types.FieldTypeText, f.Type)
	assert.Equal(t, types.DefaultFieldWidth, f.Width)
	assert.True(t, f.Visible)
	assert.False(t, f.Frozen)

	want, err := typeoption.DefaultBytes(types.FieldTypeText)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(f.TypeOption()))
	assert.Len(t, f.TypeOptions, 1)

	changes := fx.notifier.Drain()
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeCreated, changes[0].Kind)
	assert.Equal(t, f.ID, changes[0].FieldID)
	assert.Equal(t, typeoption.Fingerprint(f.TypeOption()), changes[0].Checksum)
	assert.False(t, changes[0].Degraded)
	assert.Equal(t, 1, fx.store.persisted)
}

func TestCreateFieldDuplicatesAreDistinct(t *testing.T) {
	fx := newFixture(t)
	params := types.CreateFieldParams{Name: "Same", Type: types.FieldTypeNumber}

	ids := make(map[string]bool)
	for range 5 {
		f, err := fx.reg.CreateField(params)
		require.NoError(t, err)
		ids[f.ID] = true
	}
	assert.Len(t, ids, 5)
	assert.Equal(t, 5, fx.reg.Len())
}

func TestCreateFieldCanonicalizesTypeOption(t *testing.T) {
	fx := newFixture(t)
	raw := []byte(`  {"format":"usd","scale":2,"symbol":"$","sign_positive":true,"name":"Price"} `)

	f, err := fx.reg.CreateField(types.CreateFieldParams{Name: "Price", Type: types.FieldTypeNumber, TypeOption: raw})
	require.NoError(t, err)

	opt, err := typeoption.Decode(types.FieldTypeNumber, f.TypeOption())
	require.NoError(t, err)
	assert.Equal(t, types.NumberTypeOption{Format: "usd", Scale: 2, Symbol: "$", SignPositive: true, Name: "Price"}, opt)

	again, err := typeoption.Encode(types.FieldTypeNumber, opt)
	require.NoError(t, err)
	assert.Equal(t, []byte(f.TypeOption()), again)
}

func TestCreateFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		params  types.CreateFieldParams
		wantErr error
	}{
		{"empty name", types.CreateFieldParams{Type: types.FieldTypeText}, types.ErrInvalidName},
		{"unknown type", types.CreateFieldParams{Name: "X", Type: "formula"}, types.ErrUnsupportedFieldType},
		{"negative width", types.CreateFieldParams{Name: "X", Type: types.FieldTypeText, Width: -1}, types.ErrInvalidWidth},
		{"other grid", types.CreateFieldParams{GridID: "grid-2", Name: "X", Type: types.FieldTypeText}, types.ErrGridMismatch},
		{
			name:    "malformed type option",
			params:  types.CreateFieldParams{Name: "X", Type: types.FieldTypeDate, TypeOption: []byte(`[1,2]`)},
			wantErr: types.ErrMalformedTypeOption,
		},
		{
			name:    "unknown type option member",
			params:  types.CreateFieldParams{Name: "X", Type: types.FieldTypeURL, TypeOption: []byte(`{"nope":1}`)},
			wantErr: types.ErrMalformedTypeOption,
		},
		{
			name:    "duplicate option ids",
			params:  types.CreateFieldParams{Name: "X", Type: types.FieldTypeSingleSelect, TypeOption: []byte(`{"options":[{"id":"a","name":"A","color":"pink"},{"id":"a","name":"B","color":"pink"}],"disable_color":false}`)},
			wantErr: types.ErrDuplicateOptionID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			_, err := fx.reg.CreateField(tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, fx.reg.Len())
			assert.Empty(t, fx.notifier.Drain())
		})
	}
}

func TestUpdateFieldEmptyChangesetIsNoOp(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Status", types.FieldTypeSingleSelect)
	fx.notifier.Drain()
	before, err := json.Marshal(f)
	require.NoError(t, err)

	got, err := fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, GridID: testGrid})
	require.NoError(t, err)

	after, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, fx.notifier.Drain())
	assert.Equal(t, 1, fx.store.persisted)
}

func TestUpdateFieldAppliesPopulatedMembers(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Notes", types.FieldTypeText)

	got, err := fx.reg.UpdateField(types.FieldChangeset{
		FieldID:     f.ID,
		Name:        ptr("Comments"),
		Description: ptr("free text"),
		Visible:     ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Comments", got.Name)
	assert.Equal(t, "free text", got.Description)
	assert.False(t, got.Visible)
	assert.Equal(t, f.Width, got.Width)
	assert.Equal(t, f.TypeOptions, got.TypeOptions)

	stored, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateFieldErrorsLeaveFieldUnchanged(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Notes", types.FieldTypeText)

	_, err := fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, Name: ptr("Renamed"), Width: ptr(0)})
	assert.ErrorIs(t, err, types.ErrInvalidWidth)

	_, err = fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, Name: ptr("")})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	_, err = fx.reg.UpdateField(types.FieldChangeset{FieldID: "missing", Name: ptr("x")})
	assert.ErrorIs(t, err, types.ErrFieldNotFound)

	_, err = fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, GridID: "grid-2", Name: ptr("x")})
	assert.ErrorIs(t, err, types.ErrGridMismatch)

	got, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestUpdateFieldFrozenAndWidthOnTextAndSelect(t *testing.T) {
	fx := newFixture(t)
	text := fx.create(t, "Title", types.FieldTypeText)
	sel, err := fx.reg.CreateField(types.CreateFieldParams{
		Name:       "Status",
		Type:       types.FieldTypeSingleSelect,
		TypeOption: selectRaw(t, types.FieldTypeSingleSelect, types.SelectOption{ID: "o1", Name: "Open", Color: types.ColorGreen}),
	})
	require.NoError(t, err)

	for _, f := range []*types.Field{text, sel} {
		got, err := fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, Frozen: ptr(true), Width: ptr(1000)})
		require.NoError(t, err)
		assert.True(t, got.Frozen)
		assert.Equal(t, 1000, got.Width)
		assert.Equal(t, f.Name, got.Name)
		assert.Equal(t, f.Type, got.Type)
		assert.Equal(t, f.TypeOptions, got.TypeOptions)
	}
}

func TestFrozenFieldRejectsTypeChanges(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Done", types.FieldTypeCheckbox)
	_, err := fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, Frozen: ptr(true)})
	require.NoError(t, err)
	fx.notifier.Drain()

	_, err = fx.reg.SwitchFieldType(f.ID, types.FieldTypeSingleSelect)
	assert.ErrorIs(t, err, types.ErrFieldFrozen)

	err = fx.reg.UpdateTypeOption(f.ID, []byte(`{"is_selected":true}`))
	assert.ErrorIs(t, err, types.ErrFieldFrozen)

	_, err = fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, TypeOption: []byte(`{"is_selected":true}`)})
	assert.ErrorIs(t, err, types.ErrFieldFrozen)

	// Display properties still change.
	got, err := fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, Width: ptr(80), Frozen: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 80, got.Width)
	assert.False(t, got.Frozen)
	assert.Equal(t, types.FieldTypeCheckbox, got.Type)

	changes := fx.notifier.Drain()
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeUpdated, changes[0].Kind)
}

func TestDeleteField(t *testing.T) {
	fx := newFixture(t)
	a := fx.create(t, "A", types.FieldTypeText)
	b := fx.create(t, "B", types.FieldTypeURL)
	fx.notifier.Drain()

	require.NoError(t, fx.reg.DeleteField(a.ID))
	assert.Equal(t, 1, fx.reg.Len())

	fields := fx.reg.ListFields()
	require.Len(t, fields, 1)
	assert.Equal(t, b.ID, fields[0].ID)

	changes := fx.notifier.Drain()
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeDeleted, changes[0].Kind)
	assert.Nil(t, changes[0].Field)
	assert.Equal(t, []string{a.ID}, fx.store.removed)

	err := fx.reg.DeleteField(a.ID)
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
	err = fx.reg.DeleteField("never-existed")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
	assert.Equal(t, 1, fx.reg.Len())
	assert.Empty(t, fx.notifier.Drain())
}

func TestSwitchFieldTypeRoundTripRestoresConfiguration(t *testing.T) {
	fx := newFixture(t)
	raw := selectRaw(t, types.FieldTypeSingleSelect,
		types.SelectOption{ID: "r", Name: "Red", Color: types.ColorPink},
		types.SelectOption{ID: "g", Name: "Green", Color: types.ColorGreen},
		types.SelectOption{ID: "b", Name: "Blue", Color: types.ColorBlue})
	f, err := fx.reg.CreateField(types.CreateFieldParams{Name: "Color", Type: types.FieldTypeSingleSelect, TypeOption: raw})
	require.NoError(t, err)
	original := f.TypeOption()

	for _, via := range []types.FieldType{types.FieldTypeText, types.FieldTypeCheckbox, types.FieldTypeNumber, types.FieldTypeMultiSelect} {
		t.Run(via.String(), func(t *testing.T) {
			mid, err := fx.reg.SwitchFieldType(f.ID, via)
			require.NoError(t, err)
			assert.Equal(t, via, mid.Type)

			back, err := fx.reg.SwitchFieldType(f.ID, types.FieldTypeSingleSelect)
			require.NoError(t, err)
			assert.Equal(t, types.FieldTypeSingleSelect, back.Type)
			assert.Equal(t, original, back.TypeOption())
		})
	}
}

func TestSwitchFieldTypeCheckboxBridge(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Done", types.FieldTypeCheckbox)

	got, err := fx.reg.SwitchFieldType(f.ID, types.FieldTypeSingleSelect)
	require.NoError(t, err)

	sel := decodeSelect(t, got)
	require.Len(t, sel.Options, 2)
	assert.Equal(t, types.CheckOptionName, sel.Options[0].Name)
	assert.Equal(t, types.UncheckOptionName, sel.Options[1].Name)
	assert.NotEqual(t, sel.Options[0].ID, sel.Options[1].ID)

	// The checkbox configuration stays cached.
	assert.Contains(t, got.TypeOptions, types.FieldTypeCheckbox)

	changes := fx.notifier.Drain()
	require.Len(t, changes, 2)
	assert.Equal(t, types.ChangeSwitched, changes[1].Kind)
	assert.Equal(t, typeoption.Fingerprint(got.TypeOption()), changes[1].Checksum)
}

func TestSwitchFieldTypeToCurrentTypeIsNoOp(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Title", types.FieldTypeText)
	fx.notifier.Drain()

	got, err := fx.reg.SwitchFieldType(f.ID, types.FieldTypeText)
	require.NoError(t, err)
	assert.Equal(t, f, got)
	assert.Empty(t, fx.notifier.Drain())
}

func TestSwitchFieldTypeErrors(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Title", types.FieldTypeText)

	_, err := fx.reg.SwitchFieldType(f.ID, "rollup")
	assert.ErrorIs(t, err, types.ErrUnsupportedFieldType)

	_, err = fx.reg.SwitchFieldType("missing", types.FieldTypeURL)
	assert.ErrorIs(t, err, types.ErrFieldNotFound)

	got, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FieldTypeText, got.Type)
}

func TestSwitchFieldTypeSeededWithCorruptBlob(t *testing.T) {
	seed := &types.Field{
		ID:          "bad",
		Name:        "Broken",
		Type:        types.FieldTypeSingleSelect,
		TypeOptions: map[types.FieldType]json.RawMessage{types.FieldTypeSingleSelect: json.RawMessage(`{"options":7}`)},
		Visible:     true,
		Width:       types.DefaultFieldWidth,
	}
	reg := NewRegistry(testGrid, []*types.Field{seed}, Deps{})

	_, err := reg.SwitchFieldType("bad", types.FieldTypeCheckbox)
	assert.ErrorIs(t, err, types.ErrMalformedTypeOption)

	got, err := reg.GetField("bad")
	require.NoError(t, err)
	assert.Equal(t, types.FieldTypeSingleSelect, got.Type)
}

func TestUpdateTypeOption(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "When", types.FieldTypeDate)
	fx.notifier.Drain()

	err := fx.reg.UpdateTypeOption(f.ID, []byte(`{"date_format":"iso","time_format":"12h","include_time":true}`))
	require.NoError(t, err)

	got, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	opt, err := typeoption.Decode(types.FieldTypeDate, got.TypeOption())
	require.NoError(t, err)
	assert.Equal(t, types.DateTypeOption{DateFormat: "iso", TimeFormat: "12h", IncludeTime: true}, opt)

	changes := fx.notifier.Drain()
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeTypeOptionUpdated, changes[0].Kind)
}

func TestUpdateTypeOptionRejectsMalformed(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "When", types.FieldTypeDate)
	fx.notifier.Drain()

	for _, raw := range []string{``, `  `, `not json`, `{"date_format":1}`, `{"date_format":"iso"} {}`, `{"extra":true}`, `{"DATE_FORMAT":"iso"}`} {
		err := fx.reg.UpdateTypeOption(f.ID, []byte(raw))
		assert.ErrorIs(t, err, types.ErrMalformedTypeOption, raw)
	}
	assert.ErrorIs(t, fx.reg.UpdateTypeOption(f.ID, nil), types.ErrMalformedTypeOption)

	got, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.TypeOptions, got.TypeOptions)
	assert.Empty(t, fx.notifier.Drain())
}

func TestEmptyTypeOptionKeepsSelectOptions(t *testing.T) {
	fx := newFixture(t)
	raw := selectRaw(t, types.FieldTypeSingleSelect, types.SelectOption{ID: "a", Name: "A", Color: types.ColorBlue})
	f, err := fx.reg.CreateField(types.CreateFieldParams{Name: "Status", Type: types.FieldTypeSingleSelect, TypeOption: raw})
	require.NoError(t, err)
	fx.notifier.Drain()

	assert.ErrorIs(t, fx.reg.UpdateTypeOption(f.ID, nil), types.ErrMalformedTypeOption)
	assert.ErrorIs(t, fx.reg.UpdateTypeOption(f.ID, []byte{}), types.ErrMalformedTypeOption)

	_, err = fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, TypeOption: []byte{}})
	assert.ErrorIs(t, err, types.ErrMalformedTypeOption)
	_, err = fx.reg.UpdateField(types.FieldChangeset{FieldID: f.ID, Name: ptr("Renamed"), TypeOption: []byte("")})
	assert.ErrorIs(t, err, types.ErrMalformedTypeOption)

	got, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, got)
	assert.Len(t, decodeSelect(t, got).Options, 1)
	assert.Empty(t, fx.notifier.Drain())
}

func TestTypeOptionColorOutsidePaletteIsRejected(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Status", types.FieldTypeSingleSelect)
	fx.notifier.Drain()

	neon := []byte(`{"options":[{"id":"x","name":"X","color":"neon"}],"disable_color":false}`)
	assert.ErrorIs(t, fx.reg.UpdateTypeOption(f.ID, neon), types.ErrMalformedTypeOption)

	_, err := fx.reg.CreateField(types.CreateFieldParams{Name: "Other", Type: types.FieldTypeMultiSelect, TypeOption: neon})
	assert.ErrorIs(t, err, types.ErrMalformedTypeOption)

	got, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, got)
	assert.Equal(t, 1, fx.reg.Len())
}

func TestUpdateTypeOptionKeepsOtherCachedTypes(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "Flag", types.FieldTypeCheckbox)
	_, err := fx.reg.SwitchFieldType(f.ID, types.FieldTypeMultiSelect)
	require.NoError(t, err)
	before, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)

	raw := selectRaw(t, types.FieldTypeMultiSelect, types.SelectOption{ID: "only", Name: "Only", Color: types.ColorBlue})
	require.NoError(t, fx.reg.UpdateTypeOption(f.ID, raw))

	after, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, before.TypeOptions[types.FieldTypeCheckbox], after.TypeOptions[types.FieldTypeCheckbox])
	assert.Len(t, decodeSelect(t, after).Options, 1)
}

func TestDuplicateField(t *testing.T) {
	fx := newFixture(t)
	a := fx.create(t, "A", types.FieldTypeCheckbox)
	c := fx.create(t, "C", types.FieldTypeText)
	_, err := fx.reg.SwitchFieldType(a.ID, types.FieldTypeSingleSelect)
	require.NoError(t, err)
	src, err := fx.reg.GetField(a.ID)
	require.NoError(t, err)

	dup, err := fx.reg.DuplicateField(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, dup.ID)
	assert.Equal(t, "A (copy)", dup.Name)
	assert.Equal(t, src.TypeOptions, dup.TypeOptions)

	ids := []string{}
	for _, f := range fx.reg.ListFields() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{a.ID, dup.ID, c.ID}, ids)
	assert.Equal(t, ids, fx.store.order[testGrid])

	_, err = fx.reg.DuplicateField("missing")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
}

func TestMoveField(t *testing.T) {
	fx := newFixture(t)
	a := fx.create(t, "A", types.FieldTypeText)
	b := fx.create(t, "B", types.FieldTypeText)
	c := fx.create(t, "C", types.FieldTypeText)
	fx.notifier.Drain()

	require.NoError(t, fx.reg.MoveField(c.ID, 0))
	var ids []string
	for _, f := range fx.reg.ListFields() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids)
	assert.Equal(t, ids, fx.store.order[testGrid])

	changes := fx.notifier.Drain()
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeMoved, changes[0].Kind)

	err := fx.reg.MoveField(a.ID, 3)
	assert.ErrorIs(t, err, types.ErrInvalidPosition)
	err = fx.reg.MoveField(a.ID, -1)
	assert.ErrorIs(t, err, types.ErrInvalidPosition)

	// Moving to the current position emits nothing.
	require.NoError(t, fx.reg.MoveField(a.ID, 1))
	assert.Empty(t, fx.notifier.Drain())
}

func TestListFieldsReturnsCopies(t *testing.T) {
	fx := newFixture(t)
	f := fx.create(t, "A", types.FieldTypeText)

	list := fx.reg.ListFields()
	list[0].Name = "mutated"
	list[0].TypeOptions[types.FieldTypeText][0] = 'X'

	got, err := fx.reg.GetField(f.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, f.TypeOption(), got.TypeOption())
}

func TestPersistFailureKeepsChange(t *testing.T) {
	fx := newFixture(t)
	fx.store.fail = errors.New("disk full")

	f, err := fx.reg.CreateField(types.CreateFieldParams{Name: "A", Type: types.FieldTypeText})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.reg.Len())

	changes := fx.notifier.Drain()
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Degraded)

	require.NoError(t, fx.reg.DeleteField(f.ID))
	assert.Equal(t, 0, fx.reg.Len())
}

func TestConcurrentCommandsAreSerialized(t *testing.T) {
	reg := NewRegistry(testGrid, nil, Deps{IDs: idgen.NewSequence("fld")})

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			f, err := reg.CreateField(types.CreateFieldParams{Name: "F", Type: types.FieldTypeCheckbox})
			if !assert.NoError(t, err) {
				return
			}
			_, err = reg.SwitchFieldType(f.ID, types.FieldTypeMultiSelect)
			assert.NoError(t, err)
			_, err = reg.UpdateField(types.FieldChangeset{FieldID: f.ID, Width: ptr(90)})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	fields := reg.ListFields()
	require.Len(t, fields, 20)
	for _, f := range fields {
		assert.Equal(t, types.FieldTypeMultiSelect, f.Type)
		assert.Equal(t, 90, f.Width)
	}
}
