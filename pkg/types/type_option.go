package types

// TypeOption is the per-type configuration of a field. The interface is
// sealed: only the variants declared in this file implement it, one per
// FieldType.
type TypeOption interface {
	// FieldType returns the type this configuration belongs to.
	FieldType() FieldType
	typeOption()
}

// TextTypeOption configures a text field.
type TextTypeOption struct {
	Data string `json:"data"`
}

// NumberTypeOption configures a number field.
type NumberTypeOption struct {
	Format       string `json:"format"`
	Scale        uint32 `json:"scale"`
	Symbol       string `json:"symbol"`
	SignPositive bool   `json:"sign_positive"`
	Name         string `json:"name"`
}

// DateTypeOption configures a date field.
type DateTypeOption struct {
	DateFormat  string `json:"date_format"`
	TimeFormat  string `json:"time_format"`
	IncludeTime bool   `json:"include_time"`
}

// SelectTypeOption holds the ordered option set shared by both select types.
type SelectTypeOption struct {
	Options      []SelectOption `json:"options"`
	DisableColor bool           `json:"disable_color"`
}

// SingleSelectTypeOption configures a single select field.
type SingleSelectTypeOption struct {
	SelectTypeOption
}

// MultiSelectTypeOption configures a multi select field.
type MultiSelectTypeOption struct {
	SelectTypeOption
}

// CheckboxTypeOption configures a checkbox field.
type CheckboxTypeOption struct {
	IsSelected bool `json:"is_selected"`
}

// URLTypeOption configures a URL field.
type URLTypeOption struct {
	Data string `json:"data"`
}

func (TextTypeOption) FieldType() FieldType         { return FieldTypeText }
func (NumberTypeOption) FieldType() FieldType       { return FieldTypeNumber }
func (DateTypeOption) FieldType() FieldType         { return FieldTypeDate }
func (SingleSelectTypeOption) FieldType() FieldType { return FieldTypeSingleSelect }
func (MultiSelectTypeOption) FieldType() FieldType  { return FieldTypeMultiSelect }
func (CheckboxTypeOption) FieldType() FieldType     { return FieldTypeCheckbox }
func (URLTypeOption) FieldType() FieldType          { return FieldTypeURL }

func (TextTypeOption) typeOption()         {}
func (NumberTypeOption) typeOption()       {}
func (DateTypeOption) typeOption()         {}
func (SingleSelectTypeOption) typeOption() {}
func (MultiSelectTypeOption) typeOption()  {}
func (CheckboxTypeOption) typeOption()     {}
func (URLTypeOption) typeOption()          {}

// SelectOptions returns the option set of a select variant and reports
// whether opt is one.
func SelectOptions(opt TypeOption) (SelectTypeOption, bool) {
	switch o := opt.(type) {
	case SingleSelectTypeOption:
		return o.SelectTypeOption, true
	case MultiSelectTypeOption:
		return o.SelectTypeOption, true
	case *SingleSelectTypeOption:
		if o == nil {
			return SelectTypeOption{}, false
		}
		return o.SelectTypeOption, true
	case *MultiSelectTypeOption:
		if o == nil {
			return SelectTypeOption{}, false
		}
		return o.SelectTypeOption, true
	default:
		return SelectTypeOption{}, false
	}
}

// NewSelectTypeOption wraps sel in the variant for ft. ft must be a choice type.
func NewSelectTypeOption(ft FieldType, sel SelectTypeOption) (TypeOption, error) {
	switch ft {
	case FieldTypeSingleSelect:
		return SingleSelectTypeOption{SelectTypeOption: sel}, nil
	case FieldTypeMultiSelect:
		return MultiSelectTypeOption{SelectTypeOption: sel}, nil
	default:
		return nil, ErrUnsupportedFieldType
	}
}
