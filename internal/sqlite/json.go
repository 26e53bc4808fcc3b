package sqlite

import "encoding/json"

// JSONL file names in DataDir.
const (
	fieldsJSONL      = "fields.jsonl"
	typeOptionsJSONL = "type_options.jsonl"
)

// fieldJSON is one line of fields.jsonl.
type fieldJSON struct {
	GridID      string `json:"grid_id"`
	FieldID     string `json:"field_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	FieldType   string `json:"field_type"`
	Frozen      bool   `json:"frozen"`
	Visible     bool   `json:"visible"`
	Width       int    `json:"width"`
	Ordinal     int    `json:"ordinal"`
	UpdatedAt   string `json:"updated_at"`
}

// typeOptionJSON is one line of type_options.jsonl. TypeOption is the
// encoded configuration, kept as a nested object; Checksum is its xxh3
// fingerprint in hex.
type typeOptionJSON struct {
	GridID     string          `json:"grid_id"`
	FieldID    string          `json:"field_id"`
	FieldType  string          `json:"field_type"`
	TypeOption json.RawMessage `json:"type_option"`
	Checksum   string          `json:"checksum"`
}
