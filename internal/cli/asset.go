package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/folio/internal/portfolio"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// assetFlags holds the display fields accepted by asset add and asset
// update.
type assetFlags struct {
	kind           string
	name           string
	symbol         string
	isin           string
	securityID     string
	unitType       string
	quantity       string
	currency       string
	customName     string
	showCustomName bool
	target         string
	group          string
}

func (f *assetFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "asset name")
	fs.StringVar(&f.symbol, "symbol", "", "ticker symbol")
	fs.StringVar(&f.isin, "isin", "", "ISIN")
	fs.StringVar(&f.securityID, "security-id", "", "catalog ID of the security a public holding tracks")
	fs.StringVar(&f.unitType, "unit-type", "", "unit the quantity is counted in")
	fs.StringVar(&f.quantity, "quantity", "0", "owned quantity")
	fs.StringVar(&f.currency, "currency", "", "ISO 4217 currency code, e.g. EUR")
	fs.StringVar(&f.customName, "custom-name", "", "custom display name")
	fs.BoolVar(&f.showCustomName, "show-custom-name", false, "display the custom name instead of the asset name")
	fs.StringVar(&f.target, "target", "0", "target percentage of the portfolio")
}

// apply copies every flag the user set onto asset.
func (f *assetFlags) apply(fs *pflag.FlagSet, asset *types.Asset) error {
	if fs.Changed("name") {
		asset.Name = f.name
	}
	if fs.Changed("symbol") {
		asset.Symbol = f.symbol
	}
	if fs.Changed("isin") {
		asset.ISIN = f.isin
	}
	if fs.Changed("security-id") {
		asset.SecurityID = f.securityID
	}
	if fs.Changed("unit-type") {
		asset.UnitType = f.unitType
	}
	if fs.Changed("quantity") {
		q, err := parseDecimal("quantity", f.quantity)
		if err != nil {
			return err
		}
		asset.Quantity = q
	}
	if fs.Changed("currency") {
		asset.Currency = strings.ToUpper(f.currency)
	}
	if fs.Changed("custom-name") {
		asset.CustomName = f.customName
	}
	if fs.Changed("show-custom-name") {
		asset.ShowCustomName = f.showCustomName
	}
	if fs.Changed("target") {
		t, err := parseDecimal("target", f.target)
		if err != nil {
			return err
		}
		asset.TargetPercentage = t
	}
	return nil
}

func parseDecimal(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, userError(fmt.Errorf("--%s: %q is not a number: %w", flag, value, types.ErrInvalidQuantity))
	}
	if d.IsNegative() {
		return decimal.Decimal{}, userError(fmt.Errorf("--%s must not be negative: %w", flag, types.ErrInvalidQuantity))
	}
	return d, nil
}

func newAssetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Add, list, select and update assets",
	}
	cmd.AddCommand(newAssetAddCmd(a))
	cmd.AddCommand(newAssetListCmd(a))
	cmd.AddCommand(newAssetSelectCmd(a))
	cmd.AddCommand(newAssetUpdateCmd(a))
	return cmd
}

func newAssetAddCmd(a *app) *cobra.Command {
	var f assetFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an asset",
		Long: "Add an asset to the portfolio. The asset starts unselected; with --group it is\n" +
			"appended to that group.",
		Example: "  folio asset add --name \"MSCI World\" --symbol IWDA --quantity 12.5 --currency EUR",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asset := types.Asset{Kind: f.kind, RelatedGroupID: f.group}
			if err := f.apply(cmd.Flags(), &asset); err != nil {
				return err
			}
			if asset.Currency == "" {
				asset.Currency = defaultCurrency
			}

			var added types.Asset
			err := a.withStore(true, func(s *portfolio.Store) error {
				id, err := s.AddAsset(asset)
				if err != nil {
					return fmt.Errorf("add asset: %w", err)
				}
				added, err = s.Asset(id)
				return err
			})
			if err != nil {
				return err
			}
			a.log.Debug("asset added", "asset_id", added.AssetID)

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), added)
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.AssetID)
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&f.kind, "kind", types.KindPublic, "asset kind (public or private)")
	cmd.Flags().StringVar(&f.group, "group", "", "ID of the group to add the asset to")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// defaultCurrency is used by asset add when --currency is not given.
const defaultCurrency = "EUR"

func newAssetListCmd(a *app) *cobra.Command {
	var (
		group     string
		ungrouped bool
		selected  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if group != "" && ungrouped {
				return userError(fmt.Errorf("--group and --ungrouped are mutually exclusive"))
			}
			s, err := a.readStore()
			if err != nil {
				return err
			}

			var assets []types.Asset
			switch {
			case group != "":
				assets, err = s.AssetsInGroup(group)
				if err != nil {
					return classify(fmt.Errorf("list assets: %w", err))
				}
			case ungrouped:
				assets = s.AssetsWithoutGroup()
			default:
				assets = s.Assets()
			}
			if selected {
				kept := assets[:0]
				for _, asset := range assets {
					if asset.IsSelected {
						kept = append(kept, asset)
					}
				}
				assets = kept
			}

			if a.flags.jsonMode {
				if assets == nil {
					assets = []types.Asset{}
				}
				return writeJSON(cmd.OutOrStdout(), assets)
			}
			return writeAssetTable(cmd.OutOrStdout(), assets, groupNames(s.Groups()))
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "only list members of this group, in display order")
	cmd.Flags().BoolVar(&ungrouped, "ungrouped", false, "only list assets outside every group")
	cmd.Flags().BoolVar(&selected, "selected", false, "only list selected assets")
	return cmd
}

func newAssetSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <asset-id>...",
		Short: "Toggle the selection of assets",
		Long: "Toggle the selection of each asset in turn. A group becomes selected when all\n" +
			"of its members are selected.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var count int
			err := a.withStore(true, func(s *portfolio.Store) error {
				for _, id := range args {
					if err := s.ToggleAssetSelection(id); err != nil {
						return fmt.Errorf("select asset: %w", err)
					}
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

func newAssetUpdateCmd(a *app) *cobra.Command {
	var (
		f        assetFlags
		toRemote bool
	)
	cmd := &cobra.Command{
		Use:   "update <asset-id>",
		Short: "Update the display fields of an asset",
		Long: "Update the display fields of an asset. Only the flags given are changed.\n" +
			"With --remote the edit is also sent to the holding service, and the holding\n" +
			"it returns replaces the local fields.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				updated   types.Asset
				remoteErr error
			)
			err := a.withStore(true, func(s *portfolio.Store) error {
				asset, err := s.Asset(args[0])
				if err != nil {
					return fmt.Errorf("update asset: %w", err)
				}
				if err := f.apply(cmd.Flags(), &asset); err != nil {
					return err
				}
				if err := s.UpdateAsset(asset); err != nil {
					return fmt.Errorf("update asset: %w", err)
				}

				if toRemote {
					h, err := a.pushAssetEdit(cmd.Context(), asset)
					if err != nil {
						// The local edit is kept; the failure is reported after saving.
						remoteErr = err
					} else if err := s.ApplyHolding(h); err != nil {
						return fmt.Errorf("apply holding: %w", err)
					}
				}
				updated, err = s.Asset(asset.AssetID)
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
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", updated.AssetID)
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&toRemote, "remote", false, "send the edit to the holding service")
	return cmd
}

// writeSelected reports the selected asset count after a selection change.
func writeSelected(cmd *cobra.Command, jsonMode bool, count int) error {
	if jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]int{"selected": count})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d selected\n", count)
	return nil
}
