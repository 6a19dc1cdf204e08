package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize folio storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"if none exists, then initialize the storage backend. Running init twice is safe.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	// setup has already created the config directory and config.yaml.
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	if err := backend.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"config_file": paths.ConfigFile(a.configDir),
			"data_dir":    a.cfg.DataDir,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "folio initialized")
	fmt.Fprintf(out, "config: %s\ndata:   %s\n", paths.ConfigFile(a.configDir), a.cfg.DataDir)
	return nil
}
