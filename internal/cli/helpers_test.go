package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// folioEnvVars are cleared for every test so the caller's environment does
// not leak into config resolution.
var folioEnvVars = []string{
	"FOLIO_CONFIG_DIR",
	"FOLIO_DATA_DIR",
	"FOLIO_BACKEND",
	"FOLIO_REMOTE_BASE_URL",
	"FOLIO_REMOTE_TIMEOUT",
	"FOLIO_REMOTE_RATE_LIMIT",
	"FOLIO_SESSION_FRESHNESS",
	"FOLIO_EDIT_SETTLE",
	"FOLIO_LOG_MODE",
	"FOLIO_METRICS_FILE",
}

// testEnv runs folio commands in-process against isolated directories.
type testEnv struct {
	t          *testing.T
	configDir  string
	dataDir    string
	httpClient *http.Client
	stdin      string
}

type cmdResult struct {
	Stdout   string
	Stderr   string
	Err      error
	ExitCode int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, k := range folioEnvVars {
		t.Setenv(k, "")
	}
	t.Setenv("FOLIO_EDIT_SETTLE", "1ms")
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes one folio invocation with a fresh command tree.
func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	a := &app{httpClient: e.httpClient}
	root := newRootCmd(a)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(e.stdin))
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))

	err := root.ExecuteContext(context.Background())
	res := cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
	if err != nil {
		res.ExitCode = exitCode(err)
	}
	return res
}

// mustRun executes a folio invocation and fails the test on a non-zero exit.
func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.run(args...)
	require.Equalf(e.t, exitSuccess, res.ExitCode, "folio %v: %v\nstdout: %s", args, res.Err, res.Stdout)
	return res
}

// addAsset adds an asset and returns its ID.
func (e *testEnv) addAsset(name string, extra ...string) string {
	e.t.Helper()
	args := append([]string{"asset", "add", "--name", name}, extra...)
	res := e.mustRun(args...)
	return strings.TrimSpace(res.Stdout)
}

// addGroup adds a group and returns its ID.
func (e *testEnv) addGroup(name string, extra ...string) string {
	e.t.Helper()
	args := append([]string{"group", "add", name}, extra...)
	res := e.mustRun(args...)
	return strings.TrimSpace(res.Stdout)
}

func (e *testEnv) asset(id string) types.Asset {
	e.t.Helper()
	for _, a := range e.assets() {
		if a.AssetID == id {
			return a
		}
	}
	e.t.Fatalf("asset %s not found", id)
	return types.Asset{}
}

func (e *testEnv) assets(filter ...string) []types.Asset {
	e.t.Helper()
	args := append([]string{"asset", "list", "--json"}, filter...)
	return parseJSON[[]types.Asset](e.t, e.mustRun(args...).Stdout)
}

func (e *testEnv) group(id string) types.Group {
	e.t.Helper()
	for _, g := range parseJSON[[]types.Group](e.t, e.mustRun("group", "list", "--json").Stdout) {
		if g.GroupID == id {
			return g
		}
	}
	e.t.Fatalf("group %s not found", id)
	return types.Group{}
}

func (e *testEnv) status() statusReport {
	e.t.Helper()
	return parseJSON[statusReport](e.t, e.mustRun("status", "--json").Stdout)
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoErrorf(t, json.Unmarshal([]byte(s), &v), "parse %q", s)
	return v
}
