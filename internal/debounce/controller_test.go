package debounce

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// applied collects the holdings and errors a controller reports.
type applied struct {
	mu       sync.Mutex
	holdings []string
	errs     []error
}

func (a *applied) apply(h types.Holding) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.holdings = append(a.holdings, h.AssetName)
}

func (a *applied) onError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

func (a *applied) snapshot() ([]string, []error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.holdings...), append([]error(nil), a.errs...)
}

func newController(t *testing.T, settle time.Duration) (*Controller, *applied, *Metrics) {
	t.Helper()
	got := &applied{}
	m := NewMetrics(prometheus.NewRegistry())
	c := New(Options{
		Settle:   settle,
		SavedFor: 30 * time.Millisecond,
		Apply:    got.apply,
		OnError:  got.onError,
		Metrics:  m,
	})
	t.Cleanup(c.Close)
	return c, got, m
}

func respond(name string) SendFunc {
	return func(ctx context.Context) (types.Holding, error) {
		return types.Holding{AssetName: name}, nil
	}
}

func flush(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Flush(ctx))
}

func TestOnlyLatestSubmitIsSent(t *testing.T) {
	c, got, m := newController(t, 30*time.Millisecond)

	var mu sync.Mutex
	var sent []string
	send := func(name string) SendFunc {
		return func(ctx context.Context) (types.Holding, error) {
			mu.Lock()
			sent = append(sent, name)
			mu.Unlock()
			return types.Holding{AssetName: name}, nil
		}
	}

	require.NoError(t, c.Submit(send("1")))
	require.NoError(t, c.Submit(send("12")))
	require.NoError(t, c.Submit(send("123")))
	assert.Equal(t, StatusLoading, c.Status())
	flush(t, c)

	holdings, errs := got.snapshot()
	assert.Equal(t, []string{"123"}, holdings)
	assert.Empty(t, errs)
	mu.Lock()
	assert.Equal(t, []string{"123"}, sent)
	mu.Unlock()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Submitted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Superseded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Applied))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Canceled))
}

func TestNewSubmitCancelsInFlightRequest(t *testing.T) {
	c, got, m := newController(t, time.Millisecond)

	started := make(chan struct{})
	blocking := func(ctx context.Context) (types.Holding, error) {
		close(started)
		<-ctx.Done()
		return types.Holding{}, ctx.Err()
	}

	require.NoError(t, c.Submit(blocking))
	<-started
	require.NoError(t, c.Submit(respond("second")))
	flush(t, c)

	holdings, errs := got.snapshot()
	assert.Equal(t, []string{"second"}, holdings)
	assert.Empty(t, errs, "self-cancellation is not an error")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Canceled))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Failed))
}

func TestStaleResultIsNeverApplied(t *testing.T) {
	c, got, _ := newController(t, time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	ignoresCancel := func(ctx context.Context) (types.Holding, error) {
		defer close(finished)
		close(started)
		<-release
		return types.Holding{AssetName: "stale"}, nil
	}

	require.NoError(t, c.Submit(ignoresCancel))
	<-started
	require.NoError(t, c.Submit(respond("fresh")))
	flush(t, c)

	close(release)
	<-finished
	// Let the stale completion reach the controller.
	time.Sleep(10 * time.Millisecond)

	holdings, _ := got.snapshot()
	assert.Equal(t, []string{"fresh"}, holdings)
}

func TestFailureIsReported(t *testing.T) {
	c, got, m := newController(t, time.Millisecond)
	boom := errors.New("boom")

	require.NoError(t, c.Submit(func(ctx context.Context) (types.Holding, error) {
		return types.Holding{}, boom
	}))
	flush(t, c)

	holdings, errs := got.snapshot()
	assert.Empty(t, holdings)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.Equal(t, StatusNone, c.Status())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failed))
}

func TestStatusTransitions(t *testing.T) {
	c, _, _ := newController(t, 10*time.Millisecond)
	assert.Equal(t, StatusNone, c.Status())

	require.NoError(t, c.Submit(respond("x")))
	assert.Equal(t, StatusLoading, c.Status())

	flush(t, c)
	assert.Equal(t, StatusSaved, c.Status())

	assert.Eventually(t, func() bool { return c.Status() == StatusNone },
		time.Second, 5*time.Millisecond)
}

func TestFlushHonorsContext(t *testing.T) {
	c, _, _ := newController(t, time.Millisecond)
	require.NoError(t, c.Submit(func(ctx context.Context) (types.Holding, error) {
		<-ctx.Done()
		return types.Holding{}, ctx.Err()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Flush(ctx), context.DeadlineExceeded)
}

func TestFlushWhenIdle(t *testing.T) {
	c, _, _ := newController(t, time.Hour)
	flush(t, c)
}

func TestClose(t *testing.T) {
	c, got, m := newController(t, time.Millisecond)

	started := make(chan struct{})
	require.NoError(t, c.Submit(func(ctx context.Context) (types.Holding, error) {
		close(started)
		<-ctx.Done()
		return types.Holding{AssetName: "late"}, nil
	}))
	<-started

	c.Close()
	c.Close()
	flush(t, c)

	assert.ErrorIs(t, c.Submit(respond("x")), ErrClosed)
	assert.Equal(t, StatusNone, c.Status())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Canceled))

	// Give the canceled send a moment to return; its result is dropped.
	time.Sleep(10 * time.Millisecond)
	holdings, errs := got.snapshot()
	assert.Empty(t, holdings)
	assert.Empty(t, errs)
}

func TestCloseDropsPendingEdit(t *testing.T) {
	c, got, _ := newController(t, 20*time.Millisecond)
	require.NoError(t, c.Submit(respond("never")))
	c.Close()
	flush(t, c)

	time.Sleep(40 * time.Millisecond)
	holdings, _ := got.snapshot()
	assert.Empty(t, holdings)
}
