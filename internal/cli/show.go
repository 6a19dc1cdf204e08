package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/internal/portfolio"
	"github.com/mesh-intelligence/folio/pkg/types"
)

const reportWrap = 100

func newShowCmd(a *app) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the portfolio grouped for the terminal",
		Long: "Render every group with its members in display order, followed by the\n" +
			"assets outside every group. --json prints the stored snapshot instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.readStore()
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), s.Snapshot())
			}

			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(reportWrap),
			)
			if err != nil {
				return userError(fmt.Errorf("style %q: %w", style, err))
			}
			out, err := r.Render(renderReport(s))
			if err != nil {
				return sysError(fmt.Errorf("render report: %w", err))
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty, ascii")
	return cmd
}

// renderReport builds the markdown report of the portfolio.
func renderReport(s *portfolio.Store) string {
	var b strings.Builder
	groups := s.Groups()

	b.WriteString("# Portfolio\n\n")
	fmt.Fprintf(&b, "%d assets in %d groups, %d selected", len(s.Assets()), len(groups), s.SelectedCount())
	if s.ShowGroupWrapper() {
		b.WriteString(", group wrapper open")
	}
	b.WriteString("\n\n")

	for _, g := range groups {
		fmt.Fprintf(&b, "## %s %s", checkbox(g.IsSelected), escapeMarkdown(g.Name))
		if !g.TargetPercentage.IsZero() {
			fmt.Fprintf(&b, " (target %s%%)", quantityText(g.TargetPercentage))
		}
		b.WriteString("\n\n")
		members, err := s.AssetsInGroup(g.GroupID)
		if err != nil || len(members) == 0 {
			b.WriteString("_No assets._\n\n")
			continue
		}
		writeAssetRows(&b, members)
	}

	ungrouped := s.AssetsWithoutGroup()
	if len(ungrouped) > 0 || len(groups) == 0 {
		b.WriteString("## Ungrouped\n\n")
		if len(ungrouped) == 0 {
			b.WriteString("_No assets._\n\n")
		} else {
			writeAssetRows(&b, ungrouped)
		}
	}
	return b.String()
}

func writeAssetRows(b *strings.Builder, assets []types.Asset) {
	b.WriteString("| Sel | Name | Symbol | Quantity | Currency | Target % |\n")
	b.WriteString("|-----|------|--------|---------:|----------|---------:|\n")
	for _, a := range assets {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			checkbox(a.IsSelected),
			escapeMarkdown(a.DisplayName()),
			escapeMarkdown(a.Symbol),
			quantityText(a.Quantity),
			escapeMarkdown(types.CurrencySymbol(a.Currency)),
			quantityText(a.TargetPercentage),
		)
	}
	b.WriteString("\n")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"\n", " ",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
