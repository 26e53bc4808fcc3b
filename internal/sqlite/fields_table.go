package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/gridfields/internal/typeoption"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// checksum formats the xxh3 fingerprint of an encoded type option.
func checksum(blob []byte) string {
	return fmt.Sprintf("%016x", typeoption.Fingerprint(blob))
}

// PersistField inserts or replaces a field and all of its cached type
// options. New fields are placed after the grid's existing fields.
func (b *Backend) PersistField(gridID string, f *types.Field) error {
	if gridID == "" {
		return types.ErrInvalidGridID
	}
	if f == nil || f.ID == "" {
		return fmt.Errorf("%w: missing field id", types.ErrFieldNotFound)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var ordinal int
	err = tx.QueryRow(
		"SELECT ordinal FROM fields WHERE grid_id = ? AND field_id = ?",
		gridID, f.ID,
	).Scan(&ordinal)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRow(
			"SELECT COALESCE(MAX(ordinal) + 1, 0) FROM fields WHERE grid_id = ?",
			gridID,
		).Scan(&ordinal)
	}
	if err != nil {
		return fmt.Errorf("resolving ordinal of field %s: %w", f.ID, err)
	}

	_, err = tx.Exec(
		`INSERT INTO fields (grid_id, field_id, name, description, field_type, frozen, visible, width, ordinal, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (grid_id, field_id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   field_type = excluded.field_type,
		   frozen = excluded.frozen,
		   visible = excluded.visible,
		   width = excluded.width,
		   updated_at = excluded.updated_at`,
		gridID, f.ID, f.Name, f.Description, string(f.Type), f.Frozen, f.Visible, f.Width, ordinal,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("persisting field %s: %w", f.ID, err)
	}

	if _, err := tx.Exec(
		"DELETE FROM type_options WHERE grid_id = ? AND field_id = ?",
		gridID, f.ID,
	); err != nil {
		return fmt.Errorf("clearing type options of field %s: %w", f.ID, err)
	}

	fieldTypes := make([]types.FieldType, 0, len(f.TypeOptions))
	for ft, blob := range f.TypeOptions {
		if blob != nil {
			fieldTypes = append(fieldTypes, ft)
		}
	}
	slices.Sort(fieldTypes)
	for _, ft := range fieldTypes {
		blob := f.TypeOptions[ft]
		if _, err := tx.Exec(
			"INSERT INTO type_options (grid_id, field_id, field_type, type_option, checksum) VALUES (?, ?, ?, ?, ?)",
			gridID, f.ID, string(ft), string(blob), checksum(blob),
		); err != nil {
			return fmt.Errorf("persisting %s type option of field %s: %w", ft, f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing field %s: %w", f.ID, err)
	}
	return b.writeJSONLFiles("persist")
}

// RemoveField deletes a field and its type options.
// Returns ErrFieldNotFound if the field is not stored.
func (b *Backend) RemoveField(gridID, fieldID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM fields WHERE grid_id = ? AND field_id = ?", gridID, fieldID)
	if err != nil {
		return fmt.Errorf("deleting field %s: %w", fieldID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", types.ErrFieldNotFound, fieldID)
	}
	if _, err := tx.Exec("DELETE FROM type_options WHERE grid_id = ? AND field_id = ?", gridID, fieldID); err != nil {
		return fmt.Errorf("deleting type options of field %s: %w", fieldID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of field %s: %w", fieldID, err)
	}
	return b.writeJSONLFiles("remove")
}

// ReorderFields assigns ordinals following fieldIDs. Stored fields missing
// from fieldIDs keep their relative order after the listed ones; unknown ids
// are ignored.
func (b *Backend) ReorderFields(gridID string, fieldIDs []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"UPDATE fields SET ordinal = ordinal + ? WHERE grid_id = ?",
		len(fieldIDs), gridID,
	); err != nil {
		return fmt.Errorf("shifting ordinals of grid %s: %w", gridID, err)
	}
	for i, id := range fieldIDs {
		if _, err := tx.Exec(
			"UPDATE fields SET ordinal = ? WHERE grid_id = ? AND field_id = ?",
			i, gridID, id,
		); err != nil {
			return fmt.Errorf("setting ordinal of field %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder of grid %s: %w", gridID, err)
	}
	return b.writeJSONLFiles("reorder")
}

// LoadFields returns a grid's fields in display order. Type options whose
// stored checksum does not match their content are dropped with a warning.
func (b *Backend) LoadFields(gridID string) ([]*types.Field, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(
		`SELECT field_id, name, description, field_type, frozen, visible, width
		 FROM fields WHERE grid_id = ? ORDER BY ordinal ASC, field_id ASC`,
		gridID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying fields of grid %s: %w", gridID, err)
	}
	defer rows.Close()

	var fields []*types.Field
	byID := make(map[string]*types.Field)
	for rows.Next() {
		f := &types.Field{TypeOptions: make(map[types.FieldType]json.RawMessage)}
		var fieldType string
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &fieldType, &f.Frozen, &f.Visible, &f.Width); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		f.Type = types.FieldType(fieldType)
		fields = append(fields, f)
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fields: %w", err)
	}

	optRows, err := b.db.Query(
		"SELECT field_id, field_type, type_option, checksum FROM type_options WHERE grid_id = ?",
		gridID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying type options of grid %s: %w", gridID, err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var fieldID, fieldType, blob, sum string
		if err := optRows.Scan(&fieldID, &fieldType, &blob, &sum); err != nil {
			return nil, fmt.Errorf("scanning type option: %w", err)
		}
		f, ok := byID[fieldID]
		if !ok {
			continue
		}
		if got := checksum([]byte(blob)); got != sum {
			b.logger.Warn("dropping type option with checksum mismatch",
				zap.String("grid_id", gridID),
				zap.String("field_id", fieldID),
				zap.String("field_type", fieldType),
				zap.String("want", sum),
				zap.String("got", got),
			)
			continue
		}
		f.TypeOptions[types.FieldType(fieldType)] = json.RawMessage(blob)
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating type options: %w", err)
	}

	return fields, nil
}

// GridIDs returns the ids of all grids with at least one stored field.
func (b *Backend) GridIDs() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query("SELECT DISTINCT grid_id FROM fields ORDER BY grid_id")
	if err != nil {
		return nil, fmt.Errorf("querying grids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning grid id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// persistFieldsJSONL rewrites fields.jsonl from the database.
func (b *Backend) persistFieldsJSONL() error {
	rows, err := b.db.Query(
		`SELECT grid_id, field_id, name, description, field_type, frozen, visible, width, ordinal, updated_at
		 FROM fields ORDER BY grid_id ASC, ordinal ASC`,
	)
	if err != nil {
		return fmt.Errorf("querying fields for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec fieldJSON
		if err := rows.Scan(&rec.GridID, &rec.FieldID, &rec.Name, &rec.Description, &rec.FieldType,
			&rec.Frozen, &rec.Visible, &rec.Width, &rec.Ordinal, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("scanning field for JSONL: %w", err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling field for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating fields for JSONL: %w", err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, fieldsJSONL), records)
}

// persistTypeOptionsJSONL rewrites type_options.jsonl from the database.
func (b *Backend) persistTypeOptionsJSONL() error {
	rows, err := b.db.Query(
		`SELECT grid_id, field_id, field_type, type_option, checksum
		 FROM type_options ORDER BY grid_id ASC, field_id ASC, field_type ASC`,
	)
	if err != nil {
		return fmt.Errorf("querying type options for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec typeOptionJSON
		var blob string
		if err := rows.Scan(&rec.GridID, &rec.FieldID, &rec.FieldType, &blob, &rec.Checksum); err != nil {
			return fmt.Errorf("scanning type option for JSONL: %w", err)
		}
		if !json.Valid([]byte(blob)) {
			b.logger.Warn("skipping invalid type option in JSONL export",
				zap.String("grid_id", rec.GridID),
				zap.String("field_id", rec.FieldID),
				zap.String("field_type", rec.FieldType),
			)
			continue
		}
		rec.TypeOption = json.RawMessage(blob)
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling type option for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating type options for JSONL: %w", err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, typeOptionsJSONL), records)
}
