package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// Load returns the snapshot held in SQLite. Assets and groups are ordered by
// creation time; group members keep their persisted order.
func (b *Backend) Load() (types.Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Snapshot{}, types.ErrBackendDetached
	}

	assets, err := queryAssets(b.db)
	if err != nil {
		return types.Snapshot{}, err
	}
	groups, err := queryGroups(b.db)
	if err != nil {
		return types.Snapshot{}, err
	}
	members, err := queryMembers(b.db)
	if err != nil {
		return types.Snapshot{}, err
	}
	for i := range groups {
		groups[i].AssetIDs = []string{}
		for _, m := range members[groups[i].GroupID] {
			groups[i].AssetIDs = append(groups[i].AssetIDs, m.AssetID)
		}
	}
	settings, err := querySettings(b.db)
	if err != nil {
		return types.Snapshot{}, err
	}
	wrapper, _ := strconv.ParseBool(settings[settingShowGroupWrapper])

	return types.Snapshot{
		Assets:           assets,
		Groups:           groups,
		ShowGroupWrapper: wrapper,
	}, nil
}

// Save replaces the stored state with snap in a single transaction, then
// rewrites every JSONL file from SQLite. If a JSONL write fails the error is
// returned; the next Attach reloads whatever the files hold.
func (b *Backend) Save(snap types.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"group_members", "asset_groups", "assets", "settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	for _, a := range snap.Assets {
		if err := insertAsset(tx, a); err != nil {
			return err
		}
	}
	for _, g := range snap.Groups {
		if err := insertGroup(tx, g); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?)",
		settingShowGroupWrapper, strconv.FormatBool(snap.ShowGroupWrapper),
	); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}

	return b.persistAllJSONL()
}

func insertAsset(tx *sql.Tx, a types.Asset) error {
	_, err := tx.Exec(`INSERT INTO assets (
    asset_id, kind, name, symbol, isin, security_id, unit_type, quantity, currency, custom_name,
    show_custom_name, target_percentage, related_group_id, is_selected, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AssetID, a.Kind, a.Name, a.Symbol, a.ISIN, a.SecurityID, a.UnitType,
		a.Quantity.String(), a.Currency, a.CustomName,
		boolToInt(a.ShowCustomName), a.TargetPercentage.String(), a.RelatedGroupID,
		boolToInt(a.IsSelected), formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving asset %s: %w", a.AssetID, err)
	}
	return nil
}

func insertGroup(tx *sql.Tx, g types.Group) error {
	if _, err := tx.Exec(
		"INSERT INTO asset_groups (group_id, name, target_percentage, is_selected, created_at) VALUES (?, ?, ?, ?, ?)",
		g.GroupID, g.Name, g.TargetPercentage.String(), boolToInt(g.IsSelected), formatTime(g.CreatedAt),
	); err != nil {
		return fmt.Errorf("saving group %s: %w", g.GroupID, err)
	}
	for i, id := range g.AssetIDs {
		if _, err := tx.Exec(
			"INSERT INTO group_members (group_id, asset_id, ordinal) VALUES (?, ?, ?)",
			g.GroupID, id, i,
		); err != nil {
			return fmt.Errorf("saving member %s of group %s: %w", id, g.GroupID, err)
		}
	}
	return nil
}

func queryAssets(db *sql.DB) ([]types.Asset, error) {
	rows, err := db.Query(`SELECT asset_id, kind, name, symbol, isin, security_id, unit_type, quantity, currency,
    custom_name, show_custom_name, target_percentage, related_group_id, is_selected, created_at
FROM assets ORDER BY created_at, asset_id`)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	assets := []types.Asset{}
	for rows.Next() {
		var (
			a                    types.Asset
			quantity, target     string
			createdAt            string
			showCustom, selected bool
		)
		if err := rows.Scan(
			&a.AssetID, &a.Kind, &a.Name, &a.Symbol, &a.ISIN, &a.SecurityID, &a.UnitType, &quantity, &a.Currency,
			&a.CustomName, &showCustom, &target, &a.RelatedGroupID, &selected, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		if a.Quantity, err = parseDecimal(quantity); err != nil {
			return nil, fmt.Errorf("asset %s quantity: %w", a.AssetID, err)
		}
		if a.TargetPercentage, err = parseDecimal(target); err != nil {
			return nil, fmt.Errorf("asset %s target percentage: %w", a.AssetID, err)
		}
		a.ShowCustomName = showCustom
		a.IsSelected = selected
		a.CreatedAt = parseTime(createdAt)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func queryGroups(db *sql.DB) ([]types.Group, error) {
	rows, err := db.Query(
		"SELECT group_id, name, target_percentage, is_selected, created_at FROM asset_groups ORDER BY created_at, group_id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	defer rows.Close()

	groups := []types.Group{}
	for rows.Next() {
		var (
			g                 types.Group
			target, createdAt string
		)
		if err := rows.Scan(&g.GroupID, &g.Name, &target, &g.IsSelected, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		if g.TargetPercentage, err = parseDecimal(target); err != nil {
			return nil, fmt.Errorf("group %s target percentage: %w", g.GroupID, err)
		}
		g.CreatedAt = parseTime(createdAt)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// queryMembers returns the member rows of every group keyed by group ID, in
// display order.
func queryMembers(db *sql.DB) (map[string][]groupMemberJSON, error) {
	rows, err := db.Query("SELECT group_id, asset_id, ordinal FROM group_members ORDER BY group_id, ordinal")
	if err != nil {
		return nil, fmt.Errorf("querying group members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]groupMemberJSON)
	for rows.Next() {
		var m groupMemberJSON
		if err := rows.Scan(&m.GroupID, &m.AssetID, &m.Ordinal); err != nil {
			return nil, fmt.Errorf("scanning group member: %w", err)
		}
		members[m.GroupID] = append(members[m.GroupID], m)
	}
	return members, rows.Err()
}

func querySettings(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// persistAllJSONL rewrites every JSONL file from the current SQLite state.
func (b *Backend) persistAllJSONL() error {
	assets, err := queryAssets(b.db)
	if err != nil {
		return err
	}
	assetRecords := make([]assetJSON, len(assets))
	for i, a := range assets {
		assetRecords[i] = assetJSON{
			AssetID:          a.AssetID,
			Kind:             a.Kind,
			Name:             a.Name,
			Symbol:           a.Symbol,
			ISIN:             a.ISIN,
			SecurityID:       a.SecurityID,
			UnitType:         a.UnitType,
			Quantity:         a.Quantity.String(),
			Currency:         a.Currency,
			CustomName:       a.CustomName,
			ShowCustomName:   a.ShowCustomName,
			TargetPercentage: a.TargetPercentage.String(),
			RelatedGroupID:   a.RelatedGroupID,
			IsSelected:       a.IsSelected,
			CreatedAt:        formatTime(a.CreatedAt),
		}
	}

	groups, err := queryGroups(b.db)
	if err != nil {
		return err
	}
	members, err := queryMembers(b.db)
	if err != nil {
		return err
	}
	groupRecords := make([]groupJSON, len(groups))
	var memberRecords []groupMemberJSON
	for i, g := range groups {
		groupRecords[i] = groupJSON{
			GroupID:          g.GroupID,
			Name:             g.Name,
			TargetPercentage: g.TargetPercentage.String(),
			IsSelected:       g.IsSelected,
			CreatedAt:        formatTime(g.CreatedAt),
		}
		memberRecords = append(memberRecords, members[g.GroupID]...)
	}

	settings, err := querySettings(b.db)
	if err != nil {
		return err
	}
	settingRecords := make([]settingJSON, 0, len(settings))
	for _, k := range []string{settingShowGroupWrapper} {
		if v, ok := settings[k]; ok {
			settingRecords = append(settingRecords, settingJSON{Key: k, Value: v})
		}
	}

	return b.writeTables(
		tableRecords(assetsJSONL, assetRecords),
		tableRecords(groupsJSONL, groupRecords),
		tableRecords(groupMembersJSONL, memberRecords),
		tableRecords(settingsJSONL, settingRecords),
	)
}

type jsonlTable struct {
	file    string
	records []json.RawMessage
	err     error
}

func tableRecords[T any](file string, items []T) jsonlTable {
	records, err := encodeJSONL(items)
	return jsonlTable{file: file, records: records, err: err}
}

func (b *Backend) writeTables(tables ...jsonlTable) error {
	for _, t := range tables {
		if t.err != nil {
			return fmt.Errorf("encoding %s: %w", t.file, t.err)
		}
		if err := writeJSONL(filepath.Join(b.config.DataDir, t.file), t.records); err != nil {
			return fmt.Errorf("persisting %s: %w", t.file, err)
		}
	}
	return nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// timeLayout is fixed width so timestamps sort lexically in SQLite.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts RFC 3339 timestamps; anything else reads as the zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
