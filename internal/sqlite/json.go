package sqlite

// JSON record structures that mirror the JSONL file format. Field names match
// the SQLite column names so the loader can insert records generically.

// assetJSON represents an asset in assets.jsonl. Decimal values are stored as
// strings to keep their exact representation.
type assetJSON struct {
	AssetID          string `json:"asset_id"`
	Kind             string `json:"kind"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	ISIN             string `json:"isin"`
	SecurityID       string `json:"security_id"`
	UnitType         string `json:"unit_type"`
	Quantity         string `json:"quantity"`
	Currency         string `json:"currency"`
	CustomName       string `json:"custom_name"`
	ShowCustomName   bool   `json:"show_custom_name"`
	TargetPercentage string `json:"target_percentage"`
	RelatedGroupID   string `json:"related_group_id"`
	IsSelected       bool   `json:"is_selected"`
	CreatedAt        string `json:"created_at"`
}

// groupJSON represents a group in groups.jsonl. Membership lives in
// group_members.jsonl.
type groupJSON struct {
	GroupID          string `json:"group_id"`
	Name             string `json:"name"`
	TargetPercentage string `json:"target_percentage"`
	IsSelected       bool   `json:"is_selected"`
	CreatedAt        string `json:"created_at"`
}

// groupMemberJSON represents one member of a group in group_members.jsonl.
// Ordinal is the position of the asset in the group's display order.
type groupMemberJSON struct {
	GroupID string `json:"group_id"`
	AssetID string `json:"asset_id"`
	Ordinal int    `json:"ordinal"`
}

// settingJSON represents a key/value pair in settings.jsonl.
type settingJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
