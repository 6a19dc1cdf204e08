package remote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// Patch is the body of an update request.
type Patch interface {
	// Kind is the holding kind the patch applies to.
	Kind() string
	Validate() error
}

// PublicHoldingPatch updates a holding of an exchange-traded asset.
type PublicHoldingPatch struct {
	Currency                string          `json:"currency"`
	CustomName              string          `json:"customName"`
	OwnedQuantity           decimal.Decimal `json:"ownedQuantity"`
	PublicAssetUUID         string          `json:"publicAssetUuid"`
	SelectedUnitType        string          `json:"selectedUnitType,omitempty"`
	ShouldDisplayCustomName bool            `json:"shouldDisplayCustomName"`
	TargetPercentage        decimal.Decimal `json:"targetPercentage"`
}

func (PublicHoldingPatch) Kind() string { return types.KindPublic }

func (p PublicHoldingPatch) Validate() error {
	if p.PublicAssetUUID == "" {
		return fmt.Errorf("%w: public holdings need the security ID", ErrInvalidPatch)
	}
	return validateHolding(p.Currency, p.OwnedQuantity, p.TargetPercentage)
}

// PrivateHoldingPatch updates a privately held asset.
type PrivateHoldingPatch struct {
	AssetName               string          `json:"assetName"`
	Currency                string          `json:"currency"`
	CustomName              string          `json:"customName"`
	OwnedQuantity           decimal.Decimal `json:"ownedQuantity"`
	ShouldDisplayCustomName bool            `json:"shouldDisplayCustomName"`
	TargetPercentage        decimal.Decimal `json:"targetPercentage"`
}

func (PrivateHoldingPatch) Kind() string { return types.KindPrivate }

func (p PrivateHoldingPatch) Validate() error {
	if p.AssetName == "" {
		return fmt.Errorf("%w: asset name is required", ErrInvalidPatch)
	}
	return validateHolding(p.Currency, p.OwnedQuantity, p.TargetPercentage)
}

// GroupPatch renames a holding group or changes its target.
type GroupPatch struct {
	GroupName        string          `json:"groupName"`
	TargetPercentage decimal.Decimal `json:"targetPercentage"`
}

func (GroupPatch) Kind() string { return types.KindGroup }

func (p GroupPatch) Validate() error {
	if p.GroupName == "" {
		return fmt.Errorf("%w: group name is required", ErrInvalidPatch)
	}
	return validatePercentage(p.TargetPercentage)
}

// PatchForAsset builds the update body for an asset from its display
// fields. A public holding names the catalog security it tracks through
// publicAssetUuid; the holding itself is addressed by the request path.
func PatchForAsset(a types.Asset) (Patch, error) {
	switch a.Kind {
	case types.KindPublic:
		return PublicHoldingPatch{
			Currency:                a.Currency,
			CustomName:              a.CustomName,
			OwnedQuantity:           a.Quantity,
			PublicAssetUUID:         a.SecurityID,
			SelectedUnitType:        a.UnitType,
			ShouldDisplayCustomName: a.ShowCustomName,
			TargetPercentage:        a.TargetPercentage,
		}, nil
	case types.KindPrivate:
		return PrivateHoldingPatch{
			AssetName:               a.Name,
			Currency:                a.Currency,
			CustomName:              a.CustomName,
			OwnedQuantity:           a.Quantity,
			ShouldDisplayCustomName: a.ShowCustomName,
			TargetPercentage:        a.TargetPercentage,
		}, nil
	default:
		return nil, fmt.Errorf("%q: %w", a.Kind, ErrUnsupportedKind)
	}
}

// PatchForGroup builds the update body for a group.
func PatchForGroup(g types.Group) GroupPatch {
	return GroupPatch{GroupName: g.Name, TargetPercentage: g.TargetPercentage}
}

func validateHolding(currency string, quantity, target decimal.Decimal) error {
	if !types.ValidCurrency(currency) {
		return fmt.Errorf("%q: %w", currency, types.ErrInvalidCurrency)
	}
	if quantity.IsNegative() {
		return fmt.Errorf("%w: %s", types.ErrInvalidQuantity, quantity)
	}
	return validatePercentage(target)
}

func validatePercentage(p decimal.Decimal) error {
	if !types.ValidPercentage(p) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPatch, p, types.ErrInvalidTarget)
	}
	return nil
}
