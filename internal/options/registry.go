// Package options manages select option identity and the reserved option
// names shared by the choice field types.
package options

import (
	"fmt"

	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// Registry hands out option ids from an injected generator and builds
// options with canonical names and colors.
type Registry struct {
	ids types.IDGenerator
}

// New returns a Registry drawing ids from gen.
func New(gen types.IDGenerator) *Registry {
	return &Registry{ids: gen}
}

// GenerateID returns a fresh option id.
func (r *Registry) GenerateID() string {
	return r.ids.NewID()
}

// NewOption builds an option with a fresh id and the default color.
func (r *Registry) NewOption(name string) types.SelectOption {
	return types.SelectOption{
		ID:    r.GenerateID(),
		Name:  name,
		Color: types.DefaultColor,
	}
}

// CheckboxOptions returns the CHECK and UNCHECK options, in that order, each
// with its own fresh id and the default color.
func (r *Registry) CheckboxOptions() []types.SelectOption {
	return []types.SelectOption{
		r.NewOption(types.CheckOptionName),
		r.NewOption(types.UncheckOptionName),
	}
}

// Validate checks one field's option list. Returns ErrDuplicateOptionID if
// two options share an id and ErrInvalidOptionName for an empty name.
func Validate(opts []types.SelectOption) error {
	seen := make(map[string]bool, len(opts))
	for i, o := range opts {
		if o.Name == "" {
			return fmt.Errorf("%w: option %d", types.ErrInvalidOptionName, i)
		}
		if seen[o.ID] {
			return fmt.Errorf("%w: %q", types.ErrDuplicateOptionID, o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// ValidateTypeOption runs Validate on the options of a select variant.
// Other variants carry no options and always pass.
func ValidateTypeOption(opt types.TypeOption) error {
	sel, ok := types.SelectOptions(opt)
	if !ok {
		return nil
	}
	return Validate(sel.Options)
}
