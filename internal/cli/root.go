// Package cli implements the folio command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/internal/debounce"
	"github.com/mesh-intelligence/folio/internal/logger"
	"github.com/mesh-intelligence/folio/internal/paths"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation. It is filled
// in by setup before any command runs.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	log       *logger.Logger
	registry  *prometheus.Registry
	edits     *debounce.Metrics

	// httpClient replaces the default client of the remote and session
	// collaborators when set.
	httpClient *http.Client
}

// NewRootCmd creates the top-level "folio" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "folio",
		Short: "Track, select and group portfolio holdings",
		Long: "Folio keeps a local portfolio of holdings, lets you select and group them,\n" +
			"and pushes edits to a remote holding service.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newLogoutCmd(a))
	root.AddCommand(newAssetCmd(a))
	root.AddCommand(newGroupCmd(a))
	root.AddCommand(newMoveCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newWrapperCmd(a))

	return root
}

// Execute runs the root command and returns the process exit code. SIGINT
// and SIGTERM cancel the command context, which aborts in-flight remote
// requests.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(root.ErrOrStderr(), "folio:", err)
	return exitCode(err)
}

// setup resolves directories, loads config.yaml, and builds the logger and
// metrics registry.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		a.log = logger.Nop()
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return userError(err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg.DataDir = dataDir
	if err := cfg.Validate(); err != nil {
		return userError(fmt.Errorf("invalid config: %w", err))
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return userError(fmt.Errorf("invalid config: %w", err))
	}

	a.configDir = configDir
	a.cfg = cfg
	a.log = log.With("command", cmd.CommandPath())
	a.registry = prometheus.NewRegistry()
	a.edits = debounce.NewMetrics(a.registry)
	a.log.Debug("config loaded", "config_dir", configDir, "data_dir", dataDir)
	return nil
}

// teardown writes the metrics textfile when one is configured and flushes
// the logger. It only runs after a successful command.
func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.log == nil {
		return nil
	}
	defer a.log.Sync()

	if a.registry == nil || a.cfg.MetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		return sysError(fmt.Errorf("write metrics: %w", err))
	}
	return nil
}

// exitError carries the exit code a command failed with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. Errors that do not carry a code,
// such as cobra flag and argument errors, are user errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
