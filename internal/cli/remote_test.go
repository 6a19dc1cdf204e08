package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/internal/remote"
	"github.com/mesh-intelligence/folio/internal/session"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// holdingService fakes the auth and holding endpoints.
type holdingService struct {
	mu           sync.Mutex
	requests     []string
	loginStatus  int
	patchStatus  int
	deleteStatus int
	omitName     bool
	bodies       []map[string]any
}

func (s *holdingService) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path+" "+r.Header.Get("Authorization"))
}

func (s *holdingService) set(fn func(*holdingService)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *holdingService) recorded(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.requests {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out
}

func (s *holdingService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	loginStatus, patchStatus, deleteStatus, omitName := s.loginStatus, s.patchStatus, s.deleteStatus, s.omitName
	s.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth_api/login":
		if loginStatus != 0 {
			w.WriteHeader(loginStatus)
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-1"}`))
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/holding_api/asset_holding/group/"):
		if patchStatus != 0 {
			w.WriteHeader(patchStatus)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"uuid":             path.Base(r.URL.Path),
			"groupName":        strings.ToUpper(body["groupName"].(string)),
			"targetPercentage": body["targetPercentage"],
		})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/holding_api/asset_holding/"):
		if patchStatus != 0 {
			w.WriteHeader(patchStatus)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.bodies = append(s.bodies, body)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		name := "Server Name"
		if omitName {
			name = ""
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"uuid":                    path.Base(r.URL.Path),
			"assetName":               name,
			"ownedQuantity":           body["ownedQuantity"],
			"currency":                "USD",
			"shouldDisplayCustomName": false,
			"targetPercentage":        "10",
		})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/holding_api/asset_holding/"):
		if deleteStatus != 0 {
			w.WriteHeader(deleteStatus)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

// newRemoteEnv returns a test env pointed at a fake holding service.
func newRemoteEnv(t *testing.T) (*testEnv, *holdingService) {
	t.Helper()
	env := newTestEnv(t)
	svc := &holdingService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	t.Setenv("FOLIO_REMOTE_BASE_URL", srv.URL)
	env.httpClient = srv.Client()
	return env, svc
}

func (e *testEnv) login() {
	e.t.Helper()
	e.stdin = "secret\n"
	e.mustRun("login", "--email", "me@example.com", "--password-stdin")
	e.stdin = ""
}

func TestLoginLogout(t *testing.T) {
	env, svc := newRemoteEnv(t)
	assert.False(t, env.status().LoggedIn)

	env.login()
	assert.True(t, env.status().LoggedIn)
	assert.Len(t, svc.recorded("POST /auth_api/login"), 1)

	info, err := os.Stat(filepath.Join(env.configDir, "token.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, "logged out\n", env.mustRun("logout").Stdout)
	assert.False(t, env.status().LoggedIn)
	env.mustRun("logout")
}

func TestLoginRejected(t *testing.T) {
	env, svc := newRemoteEnv(t)
	svc.set(func(s *holdingService) { s.loginStatus = http.StatusUnauthorized })

	env.stdin = "wrong\n"
	res := env.run("login", "--email", "me@example.com", "--password-stdin")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.ErrorIs(t, res.Err, session.ErrInvalidCredentials)
	assert.False(t, env.status().LoggedIn)
}

func TestLoginNeedsPassword(t *testing.T) {
	env, _ := newRemoteEnv(t)
	assert.Equal(t, exitUserError, env.run("login", "--email", "me@example.com").ExitCode)
	assert.Equal(t, exitUserError, env.run("login", "--email", "me@example.com", "--password", "x", "--password-stdin").ExitCode)
	assert.Equal(t, exitUserError, env.run("login", "--password", "x").ExitCode)
}

func TestRemoteUpdate(t *testing.T) {
	env, svc := newRemoteEnv(t)
	metrics := filepath.Join(t.TempDir(), "folio.prom")
	t.Setenv("FOLIO_METRICS_FILE", metrics)
	env.login()
	id := env.addAsset("Local Name", "--quantity", "1", "--security-id", "sec-1", "--unit-type", "SHARE")

	res := env.mustRun("asset", "update", id, "--quantity", "3", "--remote", "--json")
	updated := parseJSON[types.Asset](t, res.Stdout)
	assert.Equal(t, "Server Name", updated.Name)
	assert.Equal(t, "USD", updated.Currency)
	assert.True(t, updated.Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, updated.TargetPercentage.Equal(decimal.NewFromInt(10)))

	// Every successful command rewrites the metrics file, so read it first.
	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "folio_edit_submitted_total 1")
	assert.Contains(t, string(data), "folio_edit_applied_total 1")

	patches := svc.recorded("PATCH ")
	require.Len(t, patches, 1)
	assert.Equal(t, "PATCH /holding_api/asset_holding/public/"+id+" Bearer tok-1", patches[0])

	// The body names the catalog security, not the holding.
	svc.mu.Lock()
	body := svc.bodies[0]
	svc.mu.Unlock()
	assert.Equal(t, "sec-1", body["publicAssetUuid"])
	assert.Equal(t, "SHARE", body["selectedUnitType"])

	// The holding returned by the service was saved.
	assert.Equal(t, "Server Name", env.asset(id).Name)
}

func TestRemoteUpdateSessionExpired(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	id := env.addAsset("A", "--quantity", "1", "--security-id", "sec-1")
	svc.set(func(s *holdingService) { s.patchStatus = http.StatusUnauthorized })

	res := env.run("asset", "update", id, "--quantity", "2", "--remote")
	assert.Equal(t, exitUserError, res.ExitCode)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "log in again")

	// The local edit is kept and the rejected session is dropped.
	assert.True(t, env.asset(id).Quantity.Equal(decimal.NewFromInt(2)))
	assert.False(t, env.status().LoggedIn)
}

func TestRemoteUpdateServerError(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	id := env.addAsset("A", "--security-id", "sec-1")
	svc.set(func(s *holdingService) { s.patchStatus = http.StatusBadGateway })

	res := env.run("asset", "update", id, "--quantity", "2", "--remote")
	assert.Equal(t, exitSysError, res.ExitCode)
	assert.True(t, env.status().LoggedIn)
}

func TestRemoteUpdateNotLoggedIn(t *testing.T) {
	env, svc := newRemoteEnv(t)
	id := env.addAsset("A", "--security-id", "sec-1")

	res := env.run("asset", "update", id, "--quantity", "2", "--remote")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Contains(t, res.Err.Error(), "not logged in")
	assert.Empty(t, svc.recorded("PATCH "))
}

func TestRemoteUpdateInvalidPatch(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	id := env.addAsset("A")

	res := env.run("asset", "update", id, "--target", "150", "--remote")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.ErrorIs(t, res.Err, types.ErrInvalidTarget)

	// A public holding without a security ID cannot be patched; the local
	// edit is still saved.
	res = env.run("asset", "update", id, "--quantity", "9", "--remote")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.ErrorIs(t, res.Err, remote.ErrInvalidPatch)
	assert.True(t, env.asset(id).Quantity.Equal(decimal.NewFromInt(9)))

	assert.Empty(t, svc.recorded("PATCH "))
}

func TestRemoteUpdateKeepsNameWhenOmitted(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	id := env.addAsset("Flat", "--kind", "private")
	svc.set(func(s *holdingService) { s.omitName = true })

	res := env.mustRun("asset", "update", id, "--quantity", "2", "--remote", "--json")
	updated := parseJSON[types.Asset](t, res.Stdout)
	assert.Equal(t, "Flat", updated.Name)
	assert.True(t, updated.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "Flat", env.asset(id).Name)
}

func TestGroupUpdateRemote(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	g := env.addGroup("core")

	res := env.mustRun("group", "update", g, "--target", "60", "--remote", "--json")
	updated := parseJSON[types.Group](t, res.Stdout)
	assert.Equal(t, "CORE", updated.Name, "the group returned by the service is applied")
	assert.True(t, updated.TargetPercentage.Equal(decimal.NewFromInt(60)))

	patches := svc.recorded("PATCH ")
	require.Len(t, patches, 1)
	assert.Equal(t, "PATCH /holding_api/asset_holding/group/"+g+" Bearer tok-1", patches[0])

	saved := env.group(g)
	assert.Equal(t, "CORE", saved.Name)
	assert.True(t, saved.TargetPercentage.Equal(decimal.NewFromInt(60)))
}

func TestGroupUpdateRemoteFailureKeepsLocalEdit(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	g := env.addGroup("Core")
	svc.set(func(s *holdingService) { s.patchStatus = http.StatusConflict })

	res := env.run("group", "update", g, "--name", "Satellite", "--remote")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.ErrorIs(t, res.Err, remote.ErrConflict)
	assert.Equal(t, "Satellite", env.group(g).Name)
}

func TestGroupUpdateRemoteRejectsTarget(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	g := env.addGroup("Core")

	res := env.run("group", "update", g, "--target", "101", "--remote")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.ErrorIs(t, res.Err, types.ErrInvalidTarget)
	assert.Empty(t, svc.recorded("PATCH "))
}

func TestRemoteWithoutService(t *testing.T) {
	env := newTestEnv(t)
	id := env.addAsset("A")

	res := env.run("asset", "update", id, "--quantity", "2", "--remote")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.ErrorIs(t, res.Err, session.ErrNoRemote)

	assert.Equal(t, exitUserError, env.run("logout").ExitCode)
}

func TestDeleteRemote(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	pub := env.addAsset("Public")
	priv := env.addAsset("Private", "--kind", "private")
	keep := env.addAsset("Keep")
	env.mustRun("asset", "select", pub, priv)

	env.mustRun("delete", "--remote")
	assert.ElementsMatch(t, []string{
		"DELETE /holding_api/asset_holding/public/" + pub + " Bearer tok-1",
		"DELETE /holding_api/asset_holding/private/" + priv + " Bearer tok-1",
	}, svc.recorded("DELETE "))

	assets := env.assets()
	require.Len(t, assets, 1)
	assert.Equal(t, keep, assets[0].AssetID)
}

func TestDeleteRemoteFailureKeepsLocalData(t *testing.T) {
	env, svc := newRemoteEnv(t)
	env.login()
	id := env.addAsset("A")
	env.mustRun("asset", "select", id)
	svc.set(func(s *holdingService) { s.deleteStatus = http.StatusInternalServerError })

	res := env.run("delete", "--remote")
	assert.Equal(t, exitSysError, res.ExitCode)

	a := env.asset(id)
	assert.True(t, a.IsSelected)
	assert.Equal(t, 1, env.status().Selected)
}
