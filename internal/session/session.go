// Package session keeps the bearer token used against the remote holding
// service. A token older than the freshness window is renewed before use; a
// token whose JWT expiry has passed is rejected without a round trip.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mesh-intelligence/folio/internal/logger"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// Session errors.
var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrExpired            = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoRemote           = errors.New("no remote service configured")
)

const (
	loginPath = "/auth_api/login"
	renewPath = "/auth_api/renew"

	maxTokenBytes = 64 << 10
)

// Handle carries an authorized bearer token.
type Handle struct {
	Token string
}

// Authorize sets the Authorization header of req.
func (h *Handle) Authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+h.Token)
}

// Options configure a Provider.
type Options struct {
	BaseURL    string
	Freshness  time.Duration
	TokenFile  string
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Provider hands out authorized handles, renewing the token when it is older
// than the freshness window. It is safe for concurrent use.
type Provider struct {
	mu        sync.Mutex
	baseURL   string
	freshness time.Duration
	tokens    *tokenFile
	client    *http.Client
	log       *logger.Logger
	now       func() time.Time
}

// New returns a Provider. A zero Freshness uses types.DefaultFreshness.
func New(opts Options) *Provider {
	freshness := opts.Freshness
	if freshness == 0 {
		freshness = types.DefaultFreshness
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		freshness: freshness,
		tokens:    &tokenFile{path: opts.TokenFile},
		client:    client,
		log:       log,
		now:       time.Now,
	}
}

// Authorized returns a handle for the stored token, renewing it first when it
// was fetched longer ago than the freshness window. Renewal failures are
// returned to the caller; nothing is retried.
func (p *Provider) Authorized(ctx context.Context) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.tokens.load()
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Token == "" {
		return nil, ErrNotLoggedIn
	}
	if expired(stored.Token, p.now()) {
		return nil, ErrExpired
	}
	if p.now().Sub(stored.FetchedAt) <= p.freshness {
		return &Handle{Token: stored.Token}, nil
	}

	p.log.Debug("renewing session token", "age", p.now().Sub(stored.FetchedAt).Round(time.Second))
	token, err := p.request(ctx, http.MethodGet, renewPath, stored.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("renew: %w", err)
	}
	if err := p.tokens.save(storedToken{Token: token, FetchedAt: p.now()}); err != nil {
		return nil, err
	}
	return &Handle{Token: token}, nil
}

// Login exchanges credentials for a token and stores it.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	body, err := json.Marshal(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password})
	if err != nil {
		return err
	}
	token, err := p.request(ctx, http.MethodPost, loginPath, "", body)
	if errors.Is(err, ErrExpired) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := p.tokens.save(storedToken{Token: token, FetchedAt: p.now()}); err != nil {
		return err
	}
	p.log.Info("logged in", "email", email)
	return nil
}

// Logout forgets the stored token. Logging out twice is not an error.
func (p *Provider) Logout() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokens.remove()
}

// Invalidate forgets the stored token after the remote service rejected it.
func (p *Provider) Invalidate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Warn("session invalidated")
	return p.tokens.remove()
}

// LoggedIn reports whether a token is stored, without checking it.
func (p *Provider) LoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored, err := p.tokens.load()
	return err == nil && stored != nil && stored.Token != ""
}

// request performs an auth call and returns the token from the response
// body. A 401 or 403 maps to ErrExpired.
func (p *Provider) request(ctx context.Context, method, path, bearer string, body []byte) (string, error) {
	if p.baseURL == "" {
		return "", ErrNoRemote
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseToken(data)
}

// parseToken accepts a bare token, a JSON string, or an object with a token
// field.
func parseToken(data []byte) (string, error) {
	raw := strings.TrimSpace(string(data))
	var token string
	switch {
	case strings.HasPrefix(raw, `"`):
		if err := json.Unmarshal([]byte(raw), &token); err != nil {
			return "", fmt.Errorf("decoding token: %w", err)
		}
	case strings.HasPrefix(raw, "{"):
		var obj struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return "", fmt.Errorf("decoding token: %w", err)
		}
		token = obj.Token
	default:
		token = raw
	}
	if token == "" {
		return "", errors.New("empty token in response")
	}
	return token, nil
}

// expired reports whether token is a JWT whose exp claim has passed. Opaque
// tokens and JWTs without exp never expire here.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
