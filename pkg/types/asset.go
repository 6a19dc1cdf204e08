package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding kinds. Public holdings track an exchange-traded security, private
// holdings track anything else. Groups are patched remotely like holdings, so
// they have a kind too.
const (
	KindPublic  = "public"
	KindPrivate = "private"
	KindGroup   = "group"
)

// validAssetKinds is the set of kinds an Asset may carry.
var validAssetKinds = map[string]bool{
	KindPublic:  true,
	KindPrivate: true,
}

// ValidAssetKind reports whether kind is a recognized asset kind.
func ValidAssetKind(kind string) bool {
	return validAssetKinds[kind]
}

// Asset is a single position held by the user.
//
// SecurityID identifies the exchange-traded security a public holding tracks
// in the holding service's catalog; it is not the holding's own ID. UnitType
// is the unit the owned quantity is counted in.
//
// RelatedGroupID is empty when the asset does not belong to a group. Selection
// and membership fields are owned by the portfolio store; callers read them
// but change them only through store operations.
type Asset struct {
	AssetID          string          `json:"asset_id"`
	Kind             string          `json:"kind"`
	Name             string          `json:"name"`
	Symbol           string          `json:"symbol,omitempty"`
	ISIN             string          `json:"isin,omitempty"`
	SecurityID       string          `json:"security_id,omitempty"`
	UnitType         string          `json:"unit_type,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	Currency         string          `json:"currency,omitempty"`
	CustomName       string          `json:"custom_name,omitempty"`
	ShowCustomName   bool            `json:"show_custom_name"`
	TargetPercentage decimal.Decimal `json:"target_percentage"`
	RelatedGroupID   string          `json:"related_group_id,omitempty"`
	IsSelected       bool            `json:"is_selected"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DisplayName returns the custom name when the user asked for it, and the
// asset name otherwise.
func (a Asset) DisplayName() string {
	if a.ShowCustomName && a.CustomName != "" {
		return a.CustomName
	}
	return a.Name
}

// ValidPercentage reports whether p is a target percentage between 0 and 100.
func ValidPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && !p.GreaterThan(decimal.NewFromInt(100))
}

// Grouped reports whether the asset belongs to a group.
func (a Asset) Grouped() bool {
	return a.RelatedGroupID != ""
}
