package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. Referenced tables load before the tables that reference them.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{assetsJSONL, "assets", []string{
		"asset_id", "kind", "name", "symbol", "isin", "security_id", "unit_type", "quantity", "currency",
		"custom_name", "show_custom_name", "target_percentage", "related_group_id",
		"is_selected", "created_at",
	}},
	{groupsJSONL, "asset_groups", []string{"group_id", "name", "target_percentage", "is_selected", "created_at"}},
	{groupMembersJSONL, "group_members", []string{"group_id", "asset_id", "ordinal"}},
	{settingsJSONL, "settings", []string{"key", "value"}},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the matching SQLite table. Loading is transactional: either every file
// loads or the database stays empty. Malformed lines, records that violate a
// constraint, and unknown fields are skipped. Foreign keys are enforced, so a
// member row naming a missing asset or group is dropped.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, mapping.table, mapping.columns, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only the
// listed columns are extracted; a missing column falls back to the column
// default.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) error {
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		cols := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			val, ok := obj[col]
			if !ok || val == nil {
				continue
			}
			switch v := val.(type) {
			case map[string]any, []any:
				continue
			case bool:
				args = append(args, boolToInt(v))
			default:
				args = append(args, v)
			}
			cols = append(cols, col)
		}
		if len(cols) == 0 {
			continue
		}

		insertSQL := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			table,
			strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		)
		if _, err := tx.Exec(insertSQL, args...); err != nil {
			// Constraint violations (duplicate IDs, an asset listed twice,
			// dangling members) drop the record.
			continue
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
