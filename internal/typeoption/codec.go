// Package typeoption encodes and decodes the per-type configuration blob
// stored on a field. Encoding is deterministic JSON: structurally equal
// configurations of one type always produce identical bytes. Decoding is
// strict; a blob that does not match the type's schema exactly is rejected
// rather than partially accepted.
package typeoption

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// Default returns the canonical empty configuration for ft.
// Returns ErrUnsupportedFieldType if ft is not recognized.
func Default(ft types.FieldType) (types.TypeOption, error) {
	switch ft {
	case types.FieldTypeText:
		return types.TextTypeOption{}, nil
	case types.FieldTypeNumber:
		return types.NumberTypeOption{Format: "num", SignPositive: true, Name: "Number"}, nil
	case types.FieldTypeDate:
		return types.DateTypeOption{DateFormat: "friendly", TimeFormat: "24h"}, nil
	case types.FieldTypeSingleSelect:
		return types.SingleSelectTypeOption{SelectTypeOption: types.SelectTypeOption{Options: []types.SelectOption{}}}, nil
	case types.FieldTypeMultiSelect:
		return types.MultiSelectTypeOption{SelectTypeOption: types.SelectTypeOption{Options: []types.SelectOption{}}}, nil
	case types.FieldTypeCheckbox:
		return types.CheckboxTypeOption{}, nil
	case types.FieldTypeURL:
		return types.URLTypeOption{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFieldType, ft)
	}
}

// DefaultBytes returns the encoded default configuration for ft.
func DefaultBytes(ft types.FieldType) ([]byte, error) {
	opt, err := Default(ft)
	if err != nil {
		return nil, err
	}
	return Encode(ft, opt)
}

// Encode serializes opt, which must be the variant belonging to ft.
// Returns ErrUnsupportedFieldType for an unknown ft and ErrMalformedTypeOption
// when opt is nil or belongs to another type.
func Encode(ft types.FieldType, opt types.TypeOption) ([]byte, error) {
	if !types.IsValidFieldType(ft) {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFieldType, ft)
	}
	if opt == nil {
		return nil, fmt.Errorf("%w: nil configuration for %s", types.ErrMalformedTypeOption, ft)
	}
	if opt.FieldType() != ft {
		return nil, fmt.Errorf("%w: %s configuration given for %s", types.ErrMalformedTypeOption, opt.FieldType(), ft)
	}

	var v any = opt
	if sel, ok := types.SelectOptions(opt); ok {
		// nil and empty option lists encode the same way.
		if sel.Options == nil {
			sel.Options = []types.SelectOption{}
		}
		v = sel
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s type option: %w", ft, err)
	}
	return data, nil
}

// Decode parses data under ft's schema.
// Returns ErrUnsupportedFieldType for an unknown ft and ErrMalformedTypeOption
// when data is empty, not a JSON object, carries unknown keys, or has
// trailing content.
func Decode(ft types.FieldType, data []byte) (types.TypeOption, error) {
	switch ft {
	case types.FieldTypeText:
		var o types.TextTypeOption
		if err := decodeStrict(ft, data, &o); err != nil {
			return nil, err
		}
		return o, nil
	case types.FieldTypeNumber:
		var o types.NumberTypeOption
		if err := decodeStrict(ft, data, &o); err != nil {
			return nil, err
		}
		return o, nil
	case types.FieldTypeDate:
		var o types.DateTypeOption
		if err := decodeStrict(ft, data, &o); err != nil {
			return nil, err
		}
		return o, nil
	case types.FieldTypeSingleSelect, types.FieldTypeMultiSelect:
		var sel types.SelectTypeOption
		if err := decodeStrict(ft, data, &sel); err != nil {
			return nil, err
		}
		if sel.Options == nil {
			sel.Options = []types.SelectOption{}
		}
		for i, o := range sel.Options {
			if !types.IsValidColor(o.Color) {
				return nil, fmt.Errorf("%w: %s: option %d has color %q outside the palette", types.ErrMalformedTypeOption, ft, i, o.Color)
			}
		}
		return types.NewSelectTypeOption(ft, sel)
	case types.FieldTypeCheckbox:
		var o types.CheckboxTypeOption
		if err := decodeStrict(ft, data, &o); err != nil {
			return nil, err
		}
		return o, nil
	case types.FieldTypeURL:
		var o types.URLTypeOption
		if err := decodeStrict(ft, data, &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFieldType, ft)
	}
}

// Canonical decodes data under ft and re-encodes it, returning the canonical
// bytes together with the decoded configuration.
func Canonical(ft types.FieldType, data []byte) ([]byte, types.TypeOption, error) {
	opt, err := Decode(ft, data)
	if err != nil {
		return nil, nil, err
	}
	out, err := Encode(ft, opt)
	if err != nil {
		return nil, nil, err
	}
	return out, opt, nil
}

// Fingerprint returns a 64-bit hash of an encoded blob.
func Fingerprint(blob []byte) uint64 {
	return xxh3.Hash(blob)
}

func decodeStrict(ft types.FieldType, data []byte, dst any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: %s expects a JSON object", types.ErrMalformedTypeOption, ft)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrMalformedTypeOption, ft, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: trailing data", types.ErrMalformedTypeOption, ft)
	}
	if err := checkKeys(json.NewDecoder(bytes.NewReader(trimmed))); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrMalformedTypeOption, ft, err)
	}
	return nil
}

// checkKeys walks one JSON value and rejects objects with repeated keys or
// keys not spelled exactly as encoded. encoding/json matches keys without
// regard to case and keeps the last duplicate, so both would otherwise be
// accepted. Every variant's keys are lowercase.
func checkKeys(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		seen := make(map[string]bool)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := tok.(string)
			if key != strings.ToLower(key) {
				return fmt.Errorf("key %q is not in canonical form", key)
			}
			if seen[key] {
				return fmt.Errorf("duplicate key %q", key)
			}
			seen[key] = true
			if err := checkKeys(dec); err != nil {
				return err
			}
		}
	case '[':
		for dec.More() {
			if err := checkKeys(dec); err != nil {
				return err
			}
		}
	}
	// Closing delimiter.
	_, err = dec.Token()
	return err
}
