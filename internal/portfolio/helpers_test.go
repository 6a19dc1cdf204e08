package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// fixture is a store holding one group with three members and one
// ungrouped asset.
type fixture struct {
	store     *Store
	group     string
	members   []string
	ungrouped string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := New()

	g, err := s.AddGroup(types.Group{Name: "Tech"})
	require.NoError(t, err)

	f := fixture{store: s, group: g}
	for _, name := range []string{"A1", "A2", "A3"} {
		id := addAsset(t, s, name, g)
		f.members = append(f.members, id)
	}
	f.ungrouped = addAsset(t, s, "Cash", "")
	require.NoError(t, s.Verify())
	return f
}

func addAsset(t *testing.T, s *Store, name, group string) string {
	t.Helper()
	id, err := s.AddAsset(types.Asset{
		Kind:           types.KindPublic,
		Name:           name,
		Quantity:       decimal.NewFromInt(1),
		Currency:       "EUR",
		RelatedGroupID: group,
	})
	require.NoError(t, err)
	return id
}

func mustAsset(t *testing.T, s *Store, id string) types.Asset {
	t.Helper()
	a, err := s.Asset(id)
	require.NoError(t, err)
	return a
}

func mustGroup(t *testing.T, s *Store, id string) types.Group {
	t.Helper()
	g, err := s.Group(id)
	require.NoError(t, err)
	return g
}
