package types

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Group is a named collection of assets displayed and selected as a unit.
// AssetIDs is ordered: insertion order is display order.
type Group struct {
	GroupID          string          `json:"group_id"`
	Name             string          `json:"name"`
	TargetPercentage decimal.Decimal `json:"target_percentage"`
	AssetIDs         []string        `json:"asset_ids"`
	IsSelected       bool            `json:"is_selected"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Contains reports whether assetID is listed as a member of the group.
func (g Group) Contains(assetID string) bool {
	return slices.Contains(g.AssetIDs, assetID)
}

// Empty reports whether the group has no members.
func (g Group) Empty() bool {
	return len(g.AssetIDs) == 0
}
