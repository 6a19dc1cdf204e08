package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/internal/portfolio"
	"github.com/mesh-intelligence/folio/pkg/types"
)

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Add, list, select and update groups",
	}
	cmd.AddCommand(newGroupAddCmd(a))
	cmd.AddCommand(newGroupListCmd(a))
	cmd.AddCommand(newGroupSelectCmd(a))
	cmd.AddCommand(newGroupUpdateCmd(a))
	return cmd
}

func newGroupAddCmd(a *app) *cobra.Command {
	var (
		assetIDs []string
		selected bool
		target   string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a group",
		Long: "Add a group. With --assets the listed assets are moved into it; with\n" +
			"--selected every selected asset is moved into it.",
		Example: "  folio group add \"Core ETFs\" --selected",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if selected && len(assetIDs) > 0 {
				return userError(fmt.Errorf("--assets and --selected are mutually exclusive"))
			}
			targetPct, err := parseDecimal("target", target)
			if err != nil {
				return err
			}
			var added types.Group
			err = a.withStore(true, func(s *portfolio.Store) error {
				var (
					id  string
					err error
				)
				if selected {
					id, err = s.GroupSelected(args[0])
				} else {
					id, err = s.AddGroup(types.Group{Name: args[0], AssetIDs: assetIDs})
				}
				if err != nil {
					return fmt.Errorf("add group: %w", err)
				}
				if err := s.UpdateGroup(id, args[0], targetPct); err != nil {
					return fmt.Errorf("add group: %w", err)
				}
				added, err = s.Group(id)
				return err
			})
			if err != nil {
				return err
			}
			a.log.Debug("group added", "group_id", added.GroupID, "members", len(added.AssetIDs))

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), added)
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.GroupID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&assetIDs, "assets", nil, "comma-separated IDs of assets to move into the group")
	cmd.Flags().BoolVar(&selected, "selected", false, "move every selected asset into the group")
	cmd.Flags().StringVar(&target, "target", "0", "target percentage of the portfolio")
	return cmd
}

func newGroupListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.readStore()
			if err != nil {
				return err
			}
			groups := s.Groups()
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), groups)
			}
			return writeGroupTable(cmd.OutOrStdout(), groups)
		},
	}
}

func newGroupSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <group-id>",
		Short: "Toggle the selection of a group",
		Long: "Select every member of a group, or deselect them all when the group is\n" +
			"already fully selected.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var count int
			err := a.withStore(true, func(s *portfolio.Store) error {
				if err := s.ToggleGroupSelection(args[0]); err != nil {
					return fmt.Errorf("select group: %w", err)
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
}

func newGroupUpdateCmd(a *app) *cobra.Command {
	var (
		name     string
		target   string
		toRemote bool
	)
	cmd := &cobra.Command{
		Use:   "update <group-id>",
		Short: "Rename a group or change its target percentage",
		Long: "Rename a group or change its target percentage. Only the flags given are\n" +
			"changed. With --remote the edit is also sent to the holding service, and the\n" +
			"group it returns replaces the local fields.",
		Example: "  folio group update 0192f1c4-... --name \"Core ETFs\" --target 60 --remote",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				updated   types.Group
				remoteErr error
			)
			err := a.withStore(true, func(s *portfolio.Store) error {
				g, err := s.Group(args[0])
				if err != nil {
					return fmt.Errorf("update group: %w", err)
				}
				if cmd.Flags().Changed("name") {
					g.Name = name
				}
				if cmd.Flags().Changed("target") {
					if g.TargetPercentage, err = parseDecimal("target", target); err != nil {
						return err
					}
				}
				if err := s.UpdateGroup(g.GroupID, g.Name, g.TargetPercentage); err != nil {
					return fmt.Errorf("update group: %w", err)
				}

				if toRemote {
					if g, err = s.Group(g.GroupID); err != nil {
						return err
					}
					h, err := a.pushGroupEdit(cmd.Context(), g)
					if err != nil {
						// The local edit is kept; the failure is reported after saving.
						remoteErr = err
					} else if err := s.ApplyGroupHolding(h); err != nil {
						return fmt.Errorf("apply group holding: %w", err)
					}
				}
				updated, err = s.Group(g.GroupID)
				return err
			})
			if err != nil {
				return err
			}
			if remoteErr != nil {
				return remoteErr
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", updated.GroupID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new group name")
	cmd.Flags().StringVar(&target, "target", "0", "target percentage of the portfolio")
	cmd.Flags().BoolVar(&toRemote, "remote", false, "send the edit to the holding service")
	return cmd
}
