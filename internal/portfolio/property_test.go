package portfolio

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// TestRandomOperationsKeepInvariants drives the store with random operation
// sequences and checks every invariant after each step.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s := New()

		for step := 0; step < 300; step++ {
			op := rng.Intn(10)
			assets := s.Assets()
			groups := s.Groups()

			pickAsset := func() string {
				if len(assets) == 0 {
					return "missing"
				}
				return assets[rng.Intn(len(assets))].AssetID
			}
			pickGroup := func() string {
				if len(groups) == 0 || rng.Intn(5) == 0 {
					return ""
				}
				return groups[rng.Intn(len(groups))].GroupID
			}

			switch op {
			case 0, 1:
				_, _ = s.AddAsset(types.Asset{Kind: types.KindPublic, Name: "a", RelatedGroupID: pickGroup()})
			case 2:
				_, _ = s.AddGroup(types.Group{Name: "g"})
			case 3, 4:
				_ = s.ToggleAssetSelection(pickAsset())
			case 5:
				if g := pickGroup(); g != "" {
					_ = s.ToggleGroupSelection(g)
				}
			case 6:
				ids := []string{pickAsset(), pickAsset()}
				_ = s.MoveAssetsToGroup(ids, pickGroup())
			case 7:
				_ = s.MoveSelectedToGroup(pickGroup())
				_ = s.OpenGroupWrapper()
			case 8:
				if rng.Intn(3) == 0 {
					s.DeleteSelectedAssets()
				} else {
					_, _ = s.GroupSelected("picked")
				}
			case 9:
				s = Restore(s.Snapshot())
			}

			require.NoError(t, s.Verify(), "seed %d step %d op %d", seed, step, op)
		}
	}
}
