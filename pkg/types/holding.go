package types

import "github.com/shopspring/decimal"

// Holding is the representation of an asset or group returned by the remote
// holding service after an update. Field names follow the service's JSON.
// Group responses carry GroupName instead of the asset fields.
type Holding struct {
	UUID                    string          `json:"uuid"`
	Kind                    string          `json:"kind,omitempty"`
	AssetName               string          `json:"assetName"`
	GroupName               string          `json:"groupName,omitempty"`
	AssetType               string          `json:"assetType,omitempty"`
	ISIN                    string          `json:"isin,omitempty"`
	Symbol                  string          `json:"symbol,omitempty"`
	PublicAssetUUID         string          `json:"publicAssetUuid,omitempty"`
	SelectedUnitType        string          `json:"selectedUnitType,omitempty"`
	OwnedQuantity           decimal.Decimal `json:"ownedQuantity"`
	Currency                string          `json:"currency,omitempty"`
	CustomName              string          `json:"customName,omitempty"`
	ShouldDisplayCustomName bool            `json:"shouldDisplayCustomName"`
	TargetPercentage        decimal.Decimal `json:"targetPercentage"`
}

// ApplyTo copies the display fields of the holding onto a. Identity,
// selection and membership fields of a are left untouched, and so are the
// name, currency, security and unit when the service left them out.
func (h Holding) ApplyTo(a *Asset) {
	if h.AssetName != "" {
		a.Name = h.AssetName
	}
	a.Symbol = h.Symbol
	a.ISIN = h.ISIN
	if h.PublicAssetUUID != "" {
		a.SecurityID = h.PublicAssetUUID
	}
	if h.SelectedUnitType != "" {
		a.UnitType = h.SelectedUnitType
	}
	a.Quantity = h.OwnedQuantity
	if h.Currency != "" {
		a.Currency = h.Currency
	}
	a.CustomName = h.CustomName
	a.ShowCustomName = h.ShouldDisplayCustomName
	a.TargetPercentage = h.TargetPercentage
}

// ApplyToGroup copies the name and target percentage of a group holding onto
// g. An empty name keeps the existing one.
func (h Holding) ApplyToGroup(g *Group) {
	if h.GroupName != "" {
		g.Name = h.GroupName
	}
	g.TargetPercentage = h.TargetPercentage
}
