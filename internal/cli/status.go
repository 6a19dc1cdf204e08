package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/internal/paths"
)

// statusReport is the JSON shape of folio status.
type statusReport struct {
	ConfigFile       string `json:"config_file"`
	DataDir          string `json:"data_dir"`
	Assets           int    `json:"assets"`
	Groups           int    `json:"groups"`
	Selected         int    `json:"selected"`
	ShowGroupWrapper bool   `json:"show_group_wrapper"`
	Remote           string `json:"remote,omitempty"`
	LoggedIn         bool   `json:"logged_in"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show counts, selection and session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.readStore()
			if err != nil {
				return err
			}
			report := statusReport{
				ConfigFile:       paths.ConfigFile(a.configDir),
				DataDir:          a.cfg.DataDir,
				Assets:           len(s.Assets()),
				Groups:           len(s.Groups()),
				Selected:         s.SelectedCount(),
				ShowGroupWrapper: s.ShowGroupWrapper(),
				Remote:           a.cfg.Remote.BaseURL,
			}
			if a.cfg.RemoteEnabled() {
				p, err := a.sessionProvider()
				if err != nil {
					return err
				}
				report.LoggedIn = p.LoggedIn()
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "config:\t%s\n", report.ConfigFile)
			fmt.Fprintf(w, "data:\t%s\n", report.DataDir)
			fmt.Fprintf(w, "assets:\t%d\n", report.Assets)
			fmt.Fprintf(w, "groups:\t%d\n", report.Groups)
			fmt.Fprintf(w, "selected:\t%d\n", report.Selected)
			fmt.Fprintf(w, "wrapper:\t%t\n", report.ShowGroupWrapper)
			if report.Remote == "" {
				fmt.Fprintf(w, "remote:\tnot configured\n")
			} else {
				fmt.Fprintf(w, "remote:\t%s\n", report.Remote)
				fmt.Fprintf(w, "logged in:\t%t\n", report.LoggedIn)
			}
			return w.Flush()
		},
	}
}
