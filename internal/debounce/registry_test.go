package debounce

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/pkg/types"
)

func TestRegistry(t *testing.T) {
	var mu sync.Mutex
	applied := make(map[string]string)
	r := NewRegistry(RegistryOptions{
		Settle: time.Millisecond,
		Apply: func(id string, h types.Holding) {
			mu.Lock()
			applied[id] = h.AssetName
			mu.Unlock()
		},
	})
	defer r.Close()

	a, err := r.For("a")
	require.NoError(t, err)
	again, err := r.For("a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	b, err := r.For("b")
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	require.NoError(t, a.Submit(respond("A")))
	require.NoError(t, b.Submit(respond("B")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Flush(ctx))

	mu.Lock()
	assert.Equal(t, map[string]string{"a": "A", "b": "B"}, applied)
	mu.Unlock()
}

func TestRegistryRelease(t *testing.T) {
	r := NewRegistry(RegistryOptions{Settle: time.Millisecond})
	defer r.Close()

	a, err := r.For("a")
	require.NoError(t, err)
	r.Release("a")
	r.Release("missing")

	assert.ErrorIs(t, a.Submit(respond("x")), ErrClosed)

	fresh, err := r.For("a")
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	a, err := r.For("a")
	require.NoError(t, err)

	r.Close()

	assert.ErrorIs(t, a.Submit(respond("x")), ErrClosed)
	_, err = r.For("b")
	assert.ErrorIs(t, err, ErrClosed)
}
