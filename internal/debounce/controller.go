// Package debounce sends edits of a single holding to the remote service
// after the user stops typing. A new edit cancels the pending or in-flight
// one, and only the result of the latest edit is ever applied.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mesh-intelligence/folio/internal/logger"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("edit controller is closed")

// DefaultSavedFor is how long StatusSaved is shown before reverting to
// StatusNone.
const DefaultSavedFor = 500 * time.Millisecond

// Status is the input indicator shown next to an edited holding.
type Status int

const (
	StatusNone Status = iota
	StatusLoading
	StatusSaved
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSaved:
		return "saved"
	default:
		return "none"
	}
}

// SendFunc performs one remote update. It must honor ctx cancellation.
type SendFunc func(ctx context.Context) (types.Holding, error)

// Options configure a Controller. Apply and OnError run on the controller's
// goroutine while it holds its lock; they must not call back into the
// controller.
type Options struct {
	Settle   time.Duration
	SavedFor time.Duration
	Apply    func(types.Holding)
	OnError  func(error)
	Metrics  *Metrics
	Logger   *logger.Logger
}

// Controller debounces the edits of one holding. It is safe for concurrent
// use.
type Controller struct {
	mu   sync.Mutex
	opts Options

	gen  uint64 // latest submitted edit
	done uint64 // latest edit that finished, was superseded, or was dropped

	timer       *time.Timer
	cancel      context.CancelFunc
	status      Status
	statusTimer *time.Timer
	idle        chan struct{}
	closed      bool
}

// New returns an idle controller.
func New(opts Options) *Controller {
	if opts.Settle == 0 {
		opts.Settle = types.DefaultSettle
	}
	if opts.SavedFor == 0 {
		opts.SavedFor = DefaultSavedFor
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	idle := make(chan struct{})
	close(idle)
	return &Controller{opts: opts, idle: idle}
}

// Submit schedules send to run once the settle time passes without another
// submit. Any pending edit is dropped and any in-flight request canceled.
func (c *Controller) Submit(send SendFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.opts.Metrics.Submitted.Inc()

	if c.timer != nil && c.timer.Stop() {
		c.opts.Metrics.Superseded.Inc()
		c.opts.Logger.Debug("edit superseded", "generation", c.gen)
	}
	c.cancelInFlight()

	if c.gen == c.done {
		c.idle = make(chan struct{})
	}
	c.gen++
	gen := c.gen
	c.setStatus(StatusLoading)
	c.timer = time.AfterFunc(c.opts.Settle, func() { c.fire(gen, send) })
	return nil
}

// Status returns the current input status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Flush blocks until the latest edit has been applied, failed, or dropped,
// or until ctx is done.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the settle timer and cancels any in-flight request. Later
// submits return ErrClosed. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.statusTimer != nil {
		c.statusTimer.Stop()
	}
	c.cancelInFlight()
	c.status = StatusNone
	c.finish(c.gen)
}

// fire runs when the settle timer of generation gen expires.
func (c *Controller) fire(gen uint64, send SendFunc) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		if !c.closed {
			// The timer fired while a newer Submit waited for the lock.
			c.opts.Metrics.Superseded.Inc()
		}
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	h, err := send(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()

	// A newer submit or Close already canceled this request and took over.
	if c.closed || gen != c.gen {
		return
	}
	c.cancel = nil

	if err != nil {
		c.opts.Metrics.Failed.Inc()
		c.opts.Logger.Warn("edit failed", "generation", gen, "error", err)
		c.setStatus(StatusNone)
		if c.opts.OnError != nil {
			c.opts.OnError(err)
		}
	} else {
		c.opts.Metrics.Applied.Inc()
		if c.opts.Apply != nil {
			c.opts.Apply(h)
		}
		c.setStatus(StatusSaved)
		c.statusTimer = time.AfterFunc(c.opts.SavedFor, func() { c.clearSaved(gen) })
	}
	c.finish(gen)
}

// clearSaved reverts StatusSaved to StatusNone unless a newer edit started.
func (c *Controller) clearSaved(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen && c.status == StatusSaved {
		c.status = StatusNone
	}
}

// cancelInFlight must be called with c.mu held. Canceling a request that
// already completed is a no-op.
func (c *Controller) cancelInFlight() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	c.opts.Metrics.Canceled.Inc()
	c.opts.Logger.Debug("edit request canceled", "generation", c.gen)
}

func (c *Controller) setStatus(s Status) {
	if c.statusTimer != nil {
		c.statusTimer.Stop()
		c.statusTimer = nil
	}
	c.status = s
}

// finish marks gen as done and wakes Flush when it is the latest edit.
func (c *Controller) finish(gen uint64) {
	if gen != c.gen || c.done == c.gen {
		return
	}
	c.done = gen
	close(c.idle)
}
