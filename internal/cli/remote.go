package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/folio/internal/debounce"
	"github.com/mesh-intelligence/folio/internal/paths"
	"github.com/mesh-intelligence/folio/internal/remote"
	"github.com/mesh-intelligence/folio/internal/session"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// sessionProvider returns the session provider for the configured holding
// service.
func (a *app) sessionProvider() (*session.Provider, error) {
	if !a.cfg.RemoteEnabled() {
		return nil, userError(session.ErrNoRemote)
	}
	return session.New(session.Options{
		BaseURL:    a.cfg.Remote.BaseURL,
		Freshness:  a.cfg.Session.Freshness,
		TokenFile:  paths.TokenFile(a.configDir),
		HTTPClient: a.httpClient,
		Logger:     a.log,
	}), nil
}

// remoteClient returns a holding service client authorized by p.
func (a *app) remoteClient(p *session.Provider) *remote.Client {
	return remote.New(remote.Options{
		BaseURL:    a.cfg.Remote.BaseURL,
		Timeout:    a.cfg.Remote.Timeout,
		RateLimit:  a.cfg.Remote.RateLimit,
		Auth:       p,
		HTTPClient: a.httpClient,
		Logger:     a.log,
	})
}

// pushAssetEdit sends the display fields of asset to the holding service and
// returns the holding as stored by the service.
func (a *app) pushAssetEdit(ctx context.Context, asset types.Asset) (types.Holding, error) {
	patch, err := remote.PatchForAsset(asset)
	if err != nil {
		return types.Holding{}, userError(err)
	}
	return a.pushEdit(ctx, asset.AssetID, asset.Kind, patch)
}

// pushGroupEdit sends the name and target of g to the holding service.
func (a *app) pushGroupEdit(ctx context.Context, g types.Group) (types.Holding, error) {
	return a.pushEdit(ctx, g.GroupID, types.KindGroup, remote.PatchForGroup(g))
}

// pushEdit sends patch for holding id through a debounce controller and
// waits for the outcome.
func (a *app) pushEdit(ctx context.Context, id, kind string, patch remote.Patch) (types.Holding, error) {
	provider, err := a.sessionProvider()
	if err != nil {
		return types.Holding{}, err
	}
	if err := patch.Validate(); err != nil {
		return types.Holding{}, userError(err)
	}
	client := a.remoteClient(provider)

	var (
		got     types.Holding
		applied bool
		sendErr error
	)
	edits := debounce.NewRegistry(debounce.RegistryOptions{
		Settle:  a.cfg.Edit.Settle,
		Metrics: a.edits,
		Logger:  a.log,
		Apply: func(_ string, h types.Holding) {
			got, applied = h, true
		},
		OnError: func(_ string, err error) {
			sendErr = err
		},
	})
	defer edits.Close()

	ctrl, err := edits.For(id)
	if err != nil {
		return types.Holding{}, sysError(err)
	}
	err = ctrl.Submit(func(ctx context.Context) (types.Holding, error) {
		return client.Update(ctx, kind, id, patch)
	})
	if err != nil {
		return types.Holding{}, sysError(err)
	}
	if err := edits.Flush(ctx); err != nil {
		return types.Holding{}, a.remoteFailure(provider, err)
	}
	a.log.Debug("edit settled", "holding_id", id, "kind", kind, "status", ctrl.Status().String())
	edits.Release(id)

	if sendErr != nil {
		return types.Holding{}, a.remoteFailure(provider, sendErr)
	}
	if !applied {
		return types.Holding{}, a.remoteFailure(provider, context.Canceled)
	}
	return got, nil
}

// deleteRemote deletes targets from the holding service.
func (a *app) deleteRemote(ctx context.Context, targets []remote.Target) error {
	provider, err := a.sessionProvider()
	if err != nil {
		return err
	}
	if err := a.remoteClient(provider).DeleteAll(ctx, targets); err != nil {
		return a.remoteFailure(provider, err)
	}
	return nil
}

// errCanceled is reported when a remote call was canceled before it
// finished.
var errCanceled = errors.New("remote call canceled")

// remoteFailure turns a failed remote call into a command error. A session
// the service rejected is dropped so the next command asks for a login.
func (a *app) remoteFailure(provider *session.Provider, err error) error {
	notice := remote.Classify(err)
	if notice.Severity == remote.SeverityNone {
		a.log.Debug("remote call canceled")
		return userError(errCanceled)
	}
	if notice.Reauthenticate {
		if ierr := provider.Invalidate(); ierr != nil {
			a.log.Warn("drop session", "error", ierr)
		}
	}
	a.log.Warn("remote call failed", "severity", notice.Severity.String(), "error", err)

	msgErr := fmt.Errorf("%s: %w", notice.Message, err)
	if notice.Message == err.Error() {
		msgErr = err
	}
	if notice.Severity == remote.SeverityWarning {
		return userError(msgErr)
	}
	return sysError(msgErr)
}
