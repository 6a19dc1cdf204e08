package cli

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/folio/internal/portfolio"
	"github.com/mesh-intelligence/folio/pkg/sqlite"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// userErrors are the store errors caused by bad input rather than by the
// environment.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidName,
	types.ErrInvalidKind,
	types.ErrInvalidQuantity,
	types.ErrInvalidCurrency,
	types.ErrInvalidTarget,
	types.ErrNothingSelected,
}

// attachBackend creates the configured backend and attaches it. The caller
// must Detach it.
func (a *app) attachBackend() (types.Backend, error) {
	backend := sqlite.NewBackend()
	if err := backend.Attach(a.cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach backend: %w", err))
	}
	return backend, nil
}

// readStore loads the portfolio without saving it back.
func (a *app) readStore() (*portfolio.Store, error) {
	var out *portfolio.Store
	err := a.withStore(false, func(s *portfolio.Store) error {
		out = s
		return nil
	})
	return out, err
}

// withStore loads the portfolio, runs fn against it, and saves the result
// when save is true and fn succeeds. Errors from fn are classified so that
// invalid input exits with the user error code.
func (a *app) withStore(save bool, fn func(*portfolio.Store) error) error {
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	snap, err := backend.Load()
	if err != nil {
		return sysError(fmt.Errorf("load portfolio: %w", err))
	}
	store := portfolio.Restore(snap)

	if err := fn(store); err != nil {
		return classify(err)
	}
	if !save {
		return nil
	}
	if err := store.Verify(); err != nil {
		return sysError(err)
	}
	if err := backend.Save(store.Snapshot()); err != nil {
		return sysError(fmt.Errorf("save portfolio: %w", err))
	}
	a.log.Debug("portfolio saved", "assets", len(store.Assets()), "selected", store.SelectedCount())
	return nil
}

// classify wraps err with its exit code unless it already carries one.
func classify(err error) error {
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}
