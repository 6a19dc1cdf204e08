package portfolio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// AssetsInGroup returns copies of the members of a group in display order.
func (s *Store) AssetsInGroup(groupID string) ([]types.Asset, error) {
	g, err := s.group(groupID)
	if err != nil {
		return nil, err
	}
	out := make([]types.Asset, 0, len(g.AssetIDs))
	for _, id := range g.AssetIDs {
		out = append(out, *s.assets[id])
	}
	return out, nil
}

// AssetsWithoutGroup returns copies of the ungrouped assets ordered by
// creation time.
func (s *Store) AssetsWithoutGroup() []types.Asset {
	return s.collectAssets(func(a *types.Asset) bool { return a.RelatedGroupID == "" })
}

// MoveAssetsToGroup moves assets into the target group, or out of any group
// when targetGroupID is empty. Each moved asset is deselected and appended to
// the target's member list; moving an asset into the group it already
// belongs to moves it to the end of the list. All IDs are checked before
// anything changes.
func (s *Store) MoveAssetsToGroup(assetIDs []string, targetGroupID string) error {
	var target *types.Group
	if targetGroupID != "" {
		g, err := s.group(targetGroupID)
		if err != nil {
			return err
		}
		target = g
	}
	for _, id := range assetIDs {
		if _, err := s.asset(id); err != nil {
			return err
		}
	}

	touched := make(map[string]*types.Group)
	for _, id := range assetIDs {
		for _, g := range s.detachAsset(id) {
			touched[g.GroupID] = g
		}
		a := s.assets[id]
		a.RelatedGroupID = targetGroupID
		a.IsSelected = false
		if target != nil {
			target.AssetIDs = append(target.AssetIDs, id)
		}
	}
	if target != nil {
		touched[target.GroupID] = target
	}

	for _, g := range touched {
		s.refreshGroupFlag(g)
	}
	s.recomputeSelectedCount()
	return nil
}

// MoveSelectedToGroup moves every selected asset into the target group, or
// out of any group when targetGroupID is empty.
func (s *Store) MoveSelectedToGroup(targetGroupID string) error {
	if targetGroupID != "" {
		if _, err := s.group(targetGroupID); err != nil {
			return err
		}
	}
	ids := s.selectedIDs()
	if len(ids) == 0 {
		return types.ErrNothingSelected
	}
	return s.MoveAssetsToGroup(ids, targetGroupID)
}

// AddGroup inserts a group under a fresh ID and returns the ID. The group
// starts unselected. Any AssetIDs on g are validated first and then moved
// into the new group.
func (s *Store) AddGroup(g types.Group) (string, error) {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return "", types.ErrInvalidName
	}
	if !types.ValidPercentage(g.TargetPercentage) {
		return "", fmt.Errorf("%s: %w", g.TargetPercentage, types.ErrInvalidTarget)
	}
	members := slices.Clone(g.AssetIDs)
	for _, id := range members {
		if _, err := s.asset(id); err != nil {
			return "", err
		}
	}

	created := g.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	id := s.newID()
	s.groups[id] = &types.Group{
		GroupID:          id,
		Name:             name,
		TargetPercentage: g.TargetPercentage,
		AssetIDs:         []string{},
		CreatedAt:        created,
	}

	if len(members) > 0 {
		if err := s.MoveAssetsToGroup(members, id); err != nil {
			return "", err
		}
	}
	return id, nil
}

// GroupSelected creates a group named name and moves every selected asset
// into it.
func (s *Store) GroupSelected(name string) (string, error) {
	ids := s.selectedIDs()
	if len(ids) == 0 {
		return "", types.ErrNothingSelected
	}
	return s.AddGroup(types.Group{Name: name, AssetIDs: ids})
}

// AddAsset inserts an asset under a fresh ID and returns the ID. The asset
// starts unselected. A non-empty RelatedGroupID must name an existing group;
// the asset is appended to it.
func (s *Store) AddAsset(a types.Asset) (string, error) {
	if !types.ValidAssetKind(a.Kind) {
		return "", types.ErrInvalidKind
	}
	if err := validateDisplayFields(a); err != nil {
		return "", err
	}
	groupID := a.RelatedGroupID
	if groupID != "" {
		if _, err := s.group(groupID); err != nil {
			return "", err
		}
	}

	cp := a
	cp.AssetID = s.newID()
	cp.Name = strings.TrimSpace(a.Name)
	cp.RelatedGroupID = ""
	cp.IsSelected = false
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.assets[cp.AssetID] = &cp

	if groupID != "" {
		if err := s.MoveAssetsToGroup([]string{cp.AssetID}, groupID); err != nil {
			return "", err
		}
	}
	s.recomputeSelectedCount()
	return cp.AssetID, nil
}

// DeleteSelectedAssets removes every selected asset from its group and from
// the store, and returns the removed IDs. Groups emptied by the deletion are
// kept.
func (s *Store) DeleteSelectedAssets() []string {
	ids := s.selectedIDs()
	touched := make(map[string]*types.Group)
	for _, id := range ids {
		for _, g := range s.detachAsset(id) {
			touched[g.GroupID] = g
		}
		delete(s.assets, id)
	}
	for _, g := range touched {
		s.refreshGroupFlag(g)
	}
	s.recomputeSelectedCount()
	return ids
}

// detachAsset removes assetID from the member list of every group that lists
// it and returns those groups. Every path that removes an asset from a group
// goes through here.
func (s *Store) detachAsset(assetID string) []*types.Group {
	var from []*types.Group
	for _, g := range s.groups {
		if !g.Contains(assetID) {
			continue
		}
		g.AssetIDs = slices.DeleteFunc(g.AssetIDs, func(id string) bool { return id == assetID })
		from = append(from, g)
	}
	return from
}
