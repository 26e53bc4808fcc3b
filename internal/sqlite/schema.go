// Package sqlite implements the SQLite field store.
// SQLite is the query engine; the JSONL files in DataDir are the source of
// truth and are reloaded into a fresh database on every Attach.
package sqlite

// Schema DDL.
const (
	createFields = `CREATE TABLE IF NOT EXISTS fields (
    grid_id TEXT NOT NULL,
    field_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    field_type TEXT NOT NULL,
    frozen INTEGER NOT NULL DEFAULT 0,
    visible INTEGER NOT NULL DEFAULT 1,
    width INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (grid_id, field_id)
);`

	createTypeOptions = `CREATE TABLE IF NOT EXISTS type_options (
    grid_id TEXT NOT NULL,
    field_id TEXT NOT NULL,
    field_type TEXT NOT NULL,
    type_option TEXT NOT NULL,
    checksum TEXT NOT NULL,
    PRIMARY KEY (grid_id, field_id, field_type),
    FOREIGN KEY (grid_id, field_id) REFERENCES fields(grid_id, field_id) ON DELETE CASCADE
);`

	idxFieldsOrdinal = `CREATE INDEX IF NOT EXISTS idx_fields_grid_ordinal ON fields(grid_id, ordinal);`
)

// tableDDL lists table statements in dependency order.
var tableDDL = []string{
	createFields,
	createTypeOptions,
}

var indexDDL = []string{
	idxFieldsOrdinal,
}
