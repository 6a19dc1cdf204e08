package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/internal/portfolio"
	"github.com/mesh-intelligence/folio/internal/remote"
	"github.com/mesh-intelligence/folio/pkg/types"
)

func newMoveCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "move [asset-id...]",
		Short: "Move assets into a group or out of every group",
		Long: "Move the given assets, or every selected asset when none are given, into the\n" +
			"group named by --to. Without --to the assets leave their groups. Moved assets\n" +
			"are deselected.",
		Example: "  folio move --to 0190f3c2-...\n  folio move 0190f3c1-... 0190f3c4-...",
		RunE: func(cmd *cobra.Command, args []string) error {
			var count int
			err := a.withStore(true, func(s *portfolio.Store) error {
				var err error
				if len(args) > 0 {
					err = s.MoveAssetsToGroup(args, to)
				} else {
					err = s.MoveSelectedToGroup(to)
				}
				if err != nil {
					return fmt.Errorf("move: %w", err)
				}
				count = s.SelectedCount()
				return nil
			})
			if err != nil {
				return err
			}
			return writeSelected(cmd, a.flags.jsonMode, count)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "ID of the target group (default: no group)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var toRemote bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every selected asset",
		Long: "Delete every selected asset. Groups emptied by the deletion are kept. With\n" +
			"--remote the holdings are deleted from the holding service first; local data\n" +
			"is only changed when every remote delete succeeded.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed []string
			err := a.withStore(true, func(s *portfolio.Store) error {
				selected := s.SelectedAssets()
				if len(selected) == 0 {
					return fmt.Errorf("delete: %w", types.ErrNothingSelected)
				}
				if toRemote {
					targets := make([]remote.Target, len(selected))
					for i, asset := range selected {
						targets[i] = remote.Target{Kind: asset.Kind, ID: asset.AssetID}
					}
					if err := a.deleteRemote(cmd.Context(), targets); err != nil {
						return err
					}
				}
				removed = s.DeleteSelectedAssets()
				return nil
			})
			if err != nil {
				return err
			}
			a.log.Debug("assets deleted", "count", len(removed), "remote", toRemote)

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string][]string{"deleted": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d deleted\n", len(removed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&toRemote, "remote", false, "also delete the holdings from the holding service")
	return cmd
}

func newWrapperCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrapper",
		Short: "Open or close the group wrapper for the current selection",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "open",
		Short: "Open the group wrapper; requires a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setWrapper(cmd, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "close",
		Short: "Close the group wrapper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setWrapper(cmd, false)
		},
	})
	return cmd
}

func (a *app) setWrapper(cmd *cobra.Command, open bool) error {
	var shown bool
	err := a.withStore(true, func(s *portfolio.Store) error {
		if open {
			if err := s.OpenGroupWrapper(); err != nil {
				return fmt.Errorf("open wrapper: %w", err)
			}
		} else {
			s.CloseGroupWrapper()
		}
		shown = s.ShowGroupWrapper()
		return nil
	})
	if err != nil {
		return err
	}
	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]bool{"show_group_wrapper": shown})
	}
	state := "closed"
	if shown {
		state = "open"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrapper %s\n", state)
	return nil
}
