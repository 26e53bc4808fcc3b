package types

// FieldType is the declared type of a field. The set is closed; every
// dispatch over field types switches on these constants.
type FieldType string

// Supported field types.
const (
	FieldTypeText         FieldType = "text"
	FieldTypeNumber       FieldType = "number"
	FieldTypeDate         FieldType = "date"
	FieldTypeSingleSelect FieldType = "single_select"
	FieldTypeMultiSelect  FieldType = "multi_select"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeURL          FieldType = "url"
)

// validFieldTypes is the set of recognized field types.
var validFieldTypes = map[FieldType]bool{
	FieldTypeText:         true,
	FieldTypeNumber:       true,
	FieldTypeDate:         true,
	FieldTypeSingleSelect: true,
	FieldTypeMultiSelect:  true,
	FieldTypeCheckbox:     true,
	FieldTypeURL:          true,
}

// FieldTypes lists every supported field type in display order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeNumber,
		FieldTypeDate,
		FieldTypeSingleSelect,
		FieldTypeMultiSelect,
		FieldTypeCheckbox,
		FieldTypeURL,
	}
}

// IsValidFieldType reports whether ft is a recognized field type.
func IsValidFieldType(ft FieldType) bool {
	return validFieldTypes[ft]
}

// IsChoice reports whether the type stores a set of select options.
func (ft FieldType) IsChoice() bool {
	return ft == FieldTypeSingleSelect || ft == FieldTypeMultiSelect
}

func (ft FieldType) String() string {
	return string(ft)
}

// ParseFieldType converts a user supplied name into a FieldType.
// Returns ErrUnsupportedFieldType if the name is not recognized.
func ParseFieldType(s string) (FieldType, error) {
	ft := FieldType(s)
	if !IsValidFieldType(ft) {
		return "", ErrUnsupportedFieldType
	}
	return ft, nil
}
