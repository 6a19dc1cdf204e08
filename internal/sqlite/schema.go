package sqlite

// Schema DDL. SQLite is a query engine rebuilt on every attach; the JSONL
// files in DataDir are the source of truth.
const (
	createAssets = `CREATE TABLE assets (
    asset_id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    symbol TEXT NOT NULL DEFAULT '',
    isin TEXT NOT NULL DEFAULT '',
    security_id TEXT NOT NULL DEFAULT '',
    unit_type TEXT NOT NULL DEFAULT '',
    quantity TEXT NOT NULL DEFAULT '0',
    currency TEXT NOT NULL DEFAULT '',
    custom_name TEXT NOT NULL DEFAULT '',
    show_custom_name INTEGER NOT NULL DEFAULT 0,
    target_percentage TEXT NOT NULL DEFAULT '0',
    related_group_id TEXT NOT NULL DEFAULT '',
    is_selected INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);`

	createGroups = `CREATE TABLE asset_groups (
    group_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    target_percentage TEXT NOT NULL DEFAULT '0',
    is_selected INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);`

	createGroupMembers = `CREATE TABLE group_members (
    group_id TEXT NOT NULL,
    asset_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (group_id, asset_id),
    FOREIGN KEY (group_id) REFERENCES asset_groups(group_id) ON DELETE CASCADE,
    FOREIGN KEY (asset_id) REFERENCES assets(asset_id) ON DELETE CASCADE
);`

	createSettings = `CREATE TABLE settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`
)

// Index DDL. An asset is listed by at most one group.
const (
	idxGroupMembersAsset   = `CREATE UNIQUE INDEX idx_group_members_asset ON group_members(asset_id);`
	idxGroupMembersOrdinal = `CREATE INDEX idx_group_members_ordinal ON group_members(group_id, ordinal);`
	idxAssetsGroup         = `CREATE INDEX idx_assets_group ON assets(related_group_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createAssets,
	createGroups,
	createGroupMembers,
	createSettings,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxGroupMembersAsset,
	idxGroupMembersOrdinal,
	idxAssetsGroup,
}

// Settings keys.
const (
	settingShowGroupWrapper = "show_group_wrapper"
)
