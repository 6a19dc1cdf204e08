package portfolio

import (
	"errors"
	"fmt"
)

// ErrInconsistent is wrapped by every error returned from Verify.
var ErrInconsistent = errors.New("store is inconsistent")

// Verify checks the store invariants and reports the first violation. A
// store only built and mutated through its exported methods always passes.
func (s *Store) Verify() error {
	owner := make(map[string]string)
	for _, g := range s.groups {
		seen := make(map[string]bool, len(g.AssetIDs))
		for _, id := range g.AssetIDs {
			if seen[id] {
				return fmt.Errorf("%w: group %s lists asset %s twice", ErrInconsistent, g.GroupID, id)
			}
			seen[id] = true
			a, ok := s.assets[id]
			if !ok {
				return fmt.Errorf("%w: group %s lists missing asset %s", ErrInconsistent, g.GroupID, id)
			}
			if prev, dup := owner[id]; dup {
				return fmt.Errorf("%w: asset %s is listed by groups %s and %s", ErrInconsistent, id, prev, g.GroupID)
			}
			owner[id] = g.GroupID
			if a.RelatedGroupID != g.GroupID {
				return fmt.Errorf("%w: asset %s is listed by group %s but related to %q", ErrInconsistent, id, g.GroupID, a.RelatedGroupID)
			}
		}
		if g.IsSelected != s.fullySelected(g) {
			return fmt.Errorf("%w: group %s selected flag is %t", ErrInconsistent, g.GroupID, g.IsSelected)
		}
	}

	selected := 0
	for id, a := range s.assets {
		if a.IsSelected {
			selected++
		}
		if a.RelatedGroupID != "" && owner[id] != a.RelatedGroupID {
			return fmt.Errorf("%w: asset %s related to %s but not listed there", ErrInconsistent, id, a.RelatedGroupID)
		}
	}
	if selected != s.selectedAssetCount {
		return fmt.Errorf("%w: selected count is %d, %d assets are selected", ErrInconsistent, s.selectedAssetCount, selected)
	}
	if selected == 0 && s.showGroupWrapper {
		return fmt.Errorf("%w: group wrapper open with nothing selected", ErrInconsistent)
	}
	return nil
}
