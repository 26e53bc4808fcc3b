// Package switcher computes the configuration a field receives when its type
// changes.
//
// Resolution order:
//
//  1. identity: the current configuration is returned unchanged;
//  2. cached reuse: a configuration the field held earlier for the target
//     type is returned unmodified;
//  3. pairwise rules (see rule);
//  4. fallback: the target type's default.
//
// Only the checkbox and choice pair has a semantic bridge (true/false maps to
// the CHECK and UNCHECK options). Every other cross-type switch starts the
// destination from its default.
package switcher

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/gridfields/internal/options"
	"github.com/mesh-intelligence/gridfields/internal/typeoption"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// rule names the transformation applied when no cached configuration exists.
type rule int

const (
	ruleDefault         rule = iota // start the target from its default
	ruleChoiceToCheck               // select -> checkbox
	ruleCheckToChoice               // checkbox -> select, CHECK/UNCHECK
	ruleChoiceToChoice              // single <-> multi, options carried
	ruleToPlain                     // any -> text, number, date, url
)

// ruleFor selects the pairwise rule for a switch between two distinct types.
func ruleFor(from, to types.FieldType) rule {
	switch to {
	case types.FieldTypeCheckbox:
		if from.IsChoice() {
			return ruleChoiceToCheck
		}
		return ruleDefault
	case types.FieldTypeSingleSelect, types.FieldTypeMultiSelect:
		switch {
		case from == types.FieldTypeCheckbox:
			return ruleCheckToChoice
		case from.IsChoice():
			return ruleChoiceToChoice
		default:
			return ruleDefault
		}
	case types.FieldTypeText, types.FieldTypeNumber, types.FieldTypeDate, types.FieldTypeURL:
		return ruleToPlain
	default:
		return ruleDefault
	}
}

// Switcher produces target configurations. It is stateless apart from the
// option registry used to mint ids for generated options.
type Switcher struct {
	options *options.Registry
}

// New returns a Switcher that mints option ids through reg.
func New(reg *options.Registry) *Switcher {
	return &Switcher{options: reg}
}

// Switch returns the encoded configuration for to, given the field's current
// type and its per-type configuration cache. The cache is not modified.
//
// Returns ErrUnsupportedFieldType if either type is unknown and
// ErrMalformedTypeOption if the current configuration does not decode under
// from. A missing current configuration is treated as from's default.
func (s *Switcher) Switch(from types.FieldType, cache map[types.FieldType]json.RawMessage, to types.FieldType) (json.RawMessage, error) {
	if !types.IsValidFieldType(from) {
		return nil, fmt.Errorf("%w: source %q", types.ErrUnsupportedFieldType, from)
	}
	if !types.IsValidFieldType(to) {
		return nil, fmt.Errorf("%w: target %q", types.ErrUnsupportedFieldType, to)
	}

	currentBlob := cache[from]
	if currentBlob == nil {
		def, err := typeoption.DefaultBytes(from)
		if err != nil {
			return nil, err
		}
		currentBlob = def
	}
	current, err := typeoption.Decode(from, currentBlob)
	if err != nil {
		return nil, fmt.Errorf("current configuration: %w", err)
	}

	if from == to {
		return currentBlob, nil
	}
	if cached, ok := cache[to]; ok && cached != nil {
		return cached, nil
	}

	next, err := s.transform(from, current, to)
	if err != nil {
		return nil, err
	}
	return typeoption.Encode(to, next)
}

func (s *Switcher) transform(from types.FieldType, current types.TypeOption, to types.FieldType) (types.TypeOption, error) {
	r := ruleFor(from, to)
	switch r {
	case ruleCheckToChoice:
		return types.NewSelectTypeOption(to, types.SelectTypeOption{
			Options: s.options.CheckboxOptions(),
		})
	case ruleChoiceToChoice:
		sel, _ := types.SelectOptions(current)
		carried := types.SelectTypeOption{
			Options:      append([]types.SelectOption{}, sel.Options...),
			DisableColor: sel.DisableColor,
		}
		return types.NewSelectTypeOption(to, carried)
	case ruleChoiceToCheck, ruleToPlain, ruleDefault:
		return typeoption.Default(to)
	}
	panic(fmt.Sprintf("switcher: unhandled rule %d", r))
}
