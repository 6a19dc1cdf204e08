// Package portfolio keeps the assets and groups of a portfolio consistent
// while the user selects, moves, groups, adds, and deletes holdings.
//
// Store is the single entry point. After any exported method returns, the
// following hold:
//
//   - an asset ID appears in at most one group's member list, and that group
//     is the asset's RelatedGroupID;
//   - member lists are duplicate free and reference existing assets;
//   - a group is selected iff it has members and all of them are selected;
//   - the selected count equals the number of selected assets;
//   - the group wrapper is closed whenever nothing is selected.
//
// A Store is not safe for concurrent use.
package portfolio

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// Store is the aggregate root over the live asset and group collections.
type Store struct {
	assets map[string]*types.Asset
	groups map[string]*types.Group

	selectedAssetCount int
	showGroupWrapper   bool

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		assets: make(map[string]*types.Asset),
		groups: make(map[string]*types.Group),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Restore rebuilds a store from a persisted snapshot, repairing any
// inconsistency it finds. An asset's RelatedGroupID is authoritative when the
// group exists and is cleared otherwise. Member lists keep their persisted
// order, lose duplicates and dangling IDs, and gain missing members at the
// end. Group flags and the selected count are recomputed.
func Restore(snap types.Snapshot) *Store {
	s := New()

	for _, a := range snap.Assets {
		if a.AssetID == "" {
			continue
		}
		cp := a
		s.assets[cp.AssetID] = &cp
	}
	for _, g := range snap.Groups {
		if g.GroupID == "" {
			continue
		}
		cp := g
		cp.AssetIDs = []string{}
		s.groups[cp.GroupID] = &cp
	}

	for _, a := range s.assets {
		if a.RelatedGroupID != "" && s.groups[a.RelatedGroupID] == nil {
			a.RelatedGroupID = ""
		}
	}

	rebuilt := make(map[string]bool, len(s.groups))
	for _, persisted := range snap.Groups {
		g := s.groups[persisted.GroupID]
		if g == nil || rebuilt[g.GroupID] {
			continue
		}
		rebuilt[g.GroupID] = true
		for _, id := range persisted.AssetIDs {
			a := s.assets[id]
			if a == nil || a.RelatedGroupID != g.GroupID || g.Contains(id) {
				continue
			}
			g.AssetIDs = append(g.AssetIDs, id)
		}
	}
	for _, a := range s.sortedAssets() {
		if a.RelatedGroupID == "" {
			continue
		}
		g := s.groups[a.RelatedGroupID]
		if !g.Contains(a.AssetID) {
			g.AssetIDs = append(g.AssetIDs, a.AssetID)
		}
	}

	for _, g := range s.groups {
		s.refreshGroupFlag(g)
	}
	s.showGroupWrapper = snap.ShowGroupWrapper
	s.recomputeSelectedCount()
	return s
}

// Snapshot returns a deep copy of the store state, ordered by creation time.
func (s *Store) Snapshot() types.Snapshot {
	return types.Snapshot{
		Assets:           s.Assets(),
		Groups:           s.Groups(),
		ShowGroupWrapper: s.showGroupWrapper,
	}
}

// Asset returns a copy of the asset with the given ID.
func (s *Store) Asset(id string) (types.Asset, error) {
	a, err := s.asset(id)
	if err != nil {
		return types.Asset{}, err
	}
	return *a, nil
}

// Group returns a copy of the group with the given ID.
func (s *Store) Group(id string) (types.Group, error) {
	g, err := s.group(id)
	if err != nil {
		return types.Group{}, err
	}
	return copyGroup(g), nil
}

// Assets returns copies of all assets ordered by creation time.
func (s *Store) Assets() []types.Asset {
	return s.collectAssets(func(*types.Asset) bool { return true })
}

// Groups returns copies of all groups ordered by creation time.
func (s *Store) Groups() []types.Group {
	groups := make([]*types.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(x, y *types.Group) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(x.GroupID, y.GroupID)
	})
	out := make([]types.Group, len(groups))
	for i, g := range groups {
		out[i] = copyGroup(g)
	}
	return out
}

// UpdateAsset replaces the display fields of an existing asset: name, symbol,
// ISIN, security, unit, quantity, currency, custom name and target
// percentage. Kind, selection and membership are never changed by an update.
func (s *Store) UpdateAsset(a types.Asset) error {
	existing, err := s.asset(a.AssetID)
	if err != nil {
		return err
	}
	if err := validateDisplayFields(a); err != nil {
		return err
	}
	existing.Name = strings.TrimSpace(a.Name)
	existing.Symbol = a.Symbol
	existing.ISIN = a.ISIN
	existing.SecurityID = a.SecurityID
	existing.UnitType = a.UnitType
	existing.Quantity = a.Quantity
	existing.Currency = a.Currency
	existing.CustomName = a.CustomName
	existing.ShowCustomName = a.ShowCustomName
	existing.TargetPercentage = a.TargetPercentage
	return nil
}

// ApplyHolding applies a holding returned by the remote service to the asset
// with the same ID.
func (s *Store) ApplyHolding(h types.Holding) error {
	existing, err := s.asset(h.UUID)
	if err != nil {
		return err
	}
	updated := *existing
	h.ApplyTo(&updated)
	return s.UpdateAsset(updated)
}

// UpdateGroup renames the group with the given ID and sets its target
// percentage. Both values are validated before the group is changed;
// membership and selection are untouched.
func (s *Store) UpdateGroup(id, name string, target decimal.Decimal) error {
	g, err := s.group(id)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return types.ErrInvalidName
	}
	if !types.ValidPercentage(target) {
		return fmt.Errorf("%s: %w", target, types.ErrInvalidTarget)
	}
	g.Name = name
	g.TargetPercentage = target
	return nil
}

// ApplyGroupHolding applies a group holding returned by the remote service to
// the group with the same ID.
func (s *Store) ApplyGroupHolding(h types.Holding) error {
	existing, err := s.group(h.UUID)
	if err != nil {
		return err
	}
	updated := copyGroup(existing)
	h.ApplyToGroup(&updated)
	return s.UpdateGroup(updated.GroupID, updated.Name, updated.TargetPercentage)
}

// asset returns the live asset or an error wrapping ErrNotFound.
func (s *Store) asset(id string) (*types.Asset, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	a, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, types.ErrNotFound)
	}
	return a, nil
}

// group returns the live group or an error wrapping ErrNotFound.
func (s *Store) group(id string) (*types.Group, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, types.ErrNotFound)
	}
	return g, nil
}

// collectAssets returns copies of the assets matching keep, ordered by
// creation time.
func (s *Store) collectAssets(keep func(*types.Asset) bool) []types.Asset {
	out := []types.Asset{}
	for _, a := range s.sortedAssets() {
		if keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (s *Store) sortedAssets() []*types.Asset {
	assets := make([]*types.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		assets = append(assets, a)
	}
	slices.SortFunc(assets, func(x, y *types.Asset) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(x.AssetID, y.AssetID)
	})
	return assets
}

// newID returns a UUID v7 that is not used by any asset or group.
func (s *Store) newID() string {
	for {
		var id string
		if v7, err := uuid.NewV7(); err == nil {
			id = v7.String()
		} else {
			id = uuid.New().String()
		}
		_, isAsset := s.assets[id]
		_, isGroup := s.groups[id]
		if !isAsset && !isGroup {
			return id
		}
	}
}

func validateDisplayFields(a types.Asset) error {
	if strings.TrimSpace(a.Name) == "" {
		return types.ErrInvalidName
	}
	if a.Currency != "" && !types.ValidCurrency(a.Currency) {
		return fmt.Errorf("%q: %w", a.Currency, types.ErrInvalidCurrency)
	}
	if !types.ValidPercentage(a.TargetPercentage) {
		return fmt.Errorf("%s: %w", a.TargetPercentage, types.ErrInvalidTarget)
	}
	return nil
}

func copyGroup(g *types.Group) types.Group {
	cp := *g
	cp.AssetIDs = slices.Clone(g.AssetIDs)
	if cp.AssetIDs == nil {
		cp.AssetIDs = []string{}
	}
	return cp
}
