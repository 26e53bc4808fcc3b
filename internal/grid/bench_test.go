package grid

import (
	"fmt"
	"testing"

	"github.com/mesh-intelligence/gridfields/internal/idgen"
	"github.com/mesh-intelligence/gridfields/internal/notify"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

func benchRegistry(b *testing.B) *Registry {
	b.Helper()
	return NewRegistry(testGrid, nil, Deps{
		Store:    newMemStore(),
		Notifier: notify.Discard{},
		IDs:      idgen.NewSequence("fld"),
	})
}

func BenchmarkCreateField(b *testing.B) {
	reg := benchRegistry(b)
	for i := 0; b.Loop(); i++ {
		params := types.CreateFieldParams{GridID: testGrid, Name: fmt.Sprintf("F%d", i), Type: types.FieldTypeSingleSelect}
		if _, err := reg.CreateField(params); err != nil {
			b.Fatalf("CreateField failed: %v", err)
		}
	}
}

// BenchmarkSwitchFieldType cycles one field through every type, hitting
// pairwise rules on the first lap and cached configurations after that.
func BenchmarkSwitchFieldType(b *testing.B) {
	reg := benchRegistry(b)
	f, err := reg.CreateField(types.CreateFieldParams{GridID: testGrid, Name: "Status", Type: types.FieldTypeCheckbox})
	if err != nil {
		b.Fatalf("CreateField failed: %v", err)
	}
	all := types.FieldTypes()

	for i := 0; b.Loop(); i++ {
		if _, err := reg.SwitchFieldType(f.ID, all[i%len(all)]); err != nil {
			b.Fatalf("SwitchFieldType failed: %v", err)
		}
	}
}

func BenchmarkListFields(b *testing.B) {
	reg := benchRegistry(b)
	for i := range 100 {
		if _, err := reg.CreateField(types.CreateFieldParams{GridID: testGrid, Name: fmt.Sprintf("F%d", i), Type: types.FieldTypeText}); err != nil {
			b.Fatalf("CreateField failed: %v", err)
		}
	}

	for b.Loop() {
		if got := len(reg.ListFields()); got != 100 {
			b.Fatalf("ListFields returned %d fields", got)
		}
	}
}
