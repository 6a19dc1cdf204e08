package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/mesh-intelligence/folio/internal/logger"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// RegistryOptions configure the controllers created by a Registry. Apply
// and OnError receive the holding ID the controller was created for.
type RegistryOptions struct {
	Settle   time.Duration
	SavedFor time.Duration
	Apply    func(id string, h types.Holding)
	OnError  func(id string, err error)
	Metrics  *Metrics
	Logger   *logger.Logger
}

// Registry holds one Controller per holding ID.
type Registry struct {
	mu          sync.Mutex
	opts        RegistryOptions
	controllers map[string]*Controller
	closed      bool
}

// NewRegistry returns an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Registry{opts: opts, controllers: make(map[string]*Controller)}
}

// For returns the controller for id, creating it on first use.
func (r *Registry) For(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if c, ok := r.controllers[id]; ok {
		return c, nil
	}
	opts := Options{
		Settle:   r.opts.Settle,
		SavedFor: r.opts.SavedFor,
		Metrics:  r.opts.Metrics,
		Logger:   r.opts.Logger.With("holding_id", id),
	}
	if apply := r.opts.Apply; apply != nil {
		opts.Apply = func(h types.Holding) { apply(id, h) }
	}
	if onError := r.opts.OnError; onError != nil {
		opts.OnError = func(err error) { onError(id, err) }
	}
	c := New(opts)
	r.controllers[id] = c
	return c, nil
}

// Release closes and forgets the controller for id.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	c, ok := r.controllers[id]
	delete(r.controllers, id)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Flush waits for every controller to become idle.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.mu.Unlock()

	for _, c := range controllers {
		if err := c.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every controller. Later calls to For return ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	controllers := r.controllers
	r.controllers = make(map[string]*Controller)
	r.closed = true
	r.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
