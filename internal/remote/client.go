// Package remote talks to the holding service that owns the user's
// holdings. Every request carries a bearer token from the session provider
// and passes through a client-side rate limiter.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/folio/internal/logger"
	"github.com/mesh-intelligence/folio/internal/session"
	"github.com/mesh-intelligence/folio/pkg/types"
)

const (
	holdingPath = "/holding_api/asset_holding"

	// deleteConcurrency bounds the requests in flight during DeleteAll.
	deleteConcurrency = 4
)

// Authorizer supplies bearer tokens. *session.Provider implements it.
type Authorizer interface {
	Authorized(ctx context.Context) (*session.Handle, error)
}

// Options configure a Client. Zero values use the defaults from
// pkg/types.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	Auth       Authorizer
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client calls the remote holding service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	auth    Authorizer
	limiter *rate.Limiter
	log     *logger.Logger
}

// Target names one holding to delete.
type Target struct {
	Kind string
	ID   string
}

// New returns a Client.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = types.DefaultRemoteTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	limit := opts.RateLimit
	if limit == 0 {
		limit = types.DefaultRateLimit
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		auth:    opts.Auth,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
		log:     log,
	}
}

// Update sends patch for the holding id of the given kind and returns the
// holding as stored by the service.
func (c *Client) Update(ctx context.Context, kind, id string, patch Patch) (types.Holding, error) {
	if !types.ValidAssetKind(kind) && kind != types.KindGroup {
		return types.Holding{}, fmt.Errorf("%q: %w", kind, ErrUnsupportedKind)
	}
	if patch == nil || patch.Kind() != kind {
		return types.Holding{}, fmt.Errorf("%w: patch does not apply to %s holdings", ErrInvalidPatch, kind)
	}
	if err := patch.Validate(); err != nil {
		return types.Holding{}, err
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return types.Holding{}, err
	}

	resp, err := c.do(ctx, "update", http.MethodPatch, kind, id, body)
	if err != nil {
		return types.Holding{}, err
	}
	defer resp.Body.Close()

	var h types.Holding
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return types.Holding{}, fmt.Errorf("update: decoding holding: %w", err)
	}
	if h.UUID == "" {
		h.UUID = id
	}
	c.log.Debug("holding updated", "kind", kind, "holding_id", id)
	return h, nil
}

// Delete removes a public or private holding.
func (c *Client) Delete(ctx context.Context, kind, id string) error {
	if !types.ValidAssetKind(kind) {
		return fmt.Errorf("%q: %w", kind, ErrUnsupportedKind)
	}
	resp, err := c.do(ctx, "delete", http.MethodDelete, kind, id, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.log.Debug("holding deleted", "kind", kind, "holding_id", id)
	return nil
}

// DeleteAll deletes every target with bounded concurrency. The first failure
// cancels the remaining requests and is returned.
func (c *Client) DeleteAll(ctx context.Context, targets []Target) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, t := range targets {
		g.Go(func() error {
			return c.Delete(ctx, t.Kind, t.ID)
		})
	}
	return g.Wait()
}

// do sends an authorized request and returns the response when the status is
// 2xx. The caller closes the body.
func (c *Client) do(ctx context.Context, op, method, kind, id string, body []byte) (*http.Response, error) {
	if c.baseURL == "" {
		return nil, ErrNoRemote
	}
	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, types.ErrInvalidID)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.auth == nil {
		return nil, fmt.Errorf("%s: %w", op, session.ErrNotLoggedIn)
	}
	handle, err := c.auth.Authorized(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	endpoint := fmt.Sprintf("%s%s/%s/%s", c.baseURL, holdingPath, kind, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	handle.Authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		c.log.Warn("holding request failed", "op", op, "kind", kind, "holding_id", id, "status", resp.StatusCode)
		return nil, &StatusError{Op: op, Status: resp.StatusCode}
	}
	return resp, nil
}
