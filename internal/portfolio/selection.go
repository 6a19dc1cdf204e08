package portfolio

import "github.com/mesh-intelligence/folio/pkg/types"

// ToggleAssetSelection flips the selected flag of an asset. When the asset
// belongs to a group, the group flag becomes true only if every member is now
// selected, and false otherwise.
func (s *Store) ToggleAssetSelection(assetID string) error {
	a, err := s.asset(assetID)
	if err != nil {
		return err
	}
	a.IsSelected = !a.IsSelected
	if g := s.groups[a.RelatedGroupID]; g != nil {
		s.refreshGroupFlag(g)
	}
	s.recomputeSelectedCount()
	return nil
}

// ToggleGroupSelection deselects every member of a fully selected group and
// selects every member of any other group. The group flag follows. An empty
// group is never fully selected, and its flag stays false.
func (s *Store) ToggleGroupSelection(groupID string) error {
	g, err := s.group(groupID)
	if err != nil {
		return err
	}
	setTo := !s.fullySelected(g)
	for _, id := range g.AssetIDs {
		s.assets[id].IsSelected = setTo
	}
	s.refreshGroupFlag(g)
	s.recomputeSelectedCount()
	return nil
}

// SelectedAssets returns copies of the selected assets ordered by creation
// time.
func (s *Store) SelectedAssets() []types.Asset {
	return s.collectAssets(func(a *types.Asset) bool { return a.IsSelected })
}

// SelectedCount returns the number of selected assets.
func (s *Store) SelectedCount() int {
	return s.selectedAssetCount
}

// ShowGroupWrapper reports whether the grouping panel is open.
func (s *Store) ShowGroupWrapper() bool {
	return s.showGroupWrapper
}

// OpenGroupWrapper opens the grouping panel. It returns ErrNothingSelected
// when no asset is selected, since the panel is closed whenever the
// selection is empty.
func (s *Store) OpenGroupWrapper() error {
	if s.selectedAssetCount == 0 {
		return types.ErrNothingSelected
	}
	s.showGroupWrapper = true
	return nil
}

// CloseGroupWrapper closes the grouping panel.
func (s *Store) CloseGroupWrapper() {
	s.showGroupWrapper = false
}

// recomputeSelectedCount must run at the end of every mutation.
func (s *Store) recomputeSelectedCount() {
	count := 0
	for _, a := range s.assets {
		if a.IsSelected {
			count++
		}
	}
	s.selectedAssetCount = count
	if count == 0 {
		s.showGroupWrapper = false
	}
}

// fullySelected reports whether g has members and all of them are selected.
func (s *Store) fullySelected(g *types.Group) bool {
	if g.Empty() {
		return false
	}
	for _, id := range g.AssetIDs {
		if !s.assets[id].IsSelected {
			return false
		}
	}
	return true
}

func (s *Store) refreshGroupFlag(g *types.Group) {
	g.IsSelected = s.fullySelected(g)
}

// selectedIDs returns the IDs of the selected assets ordered by creation time.
func (s *Store) selectedIDs() []string {
	var ids []string
	for _, a := range s.sortedAssets() {
		if a.IsSelected {
			ids = append(ids, a.AssetID)
		}
	}
	return ids
}
