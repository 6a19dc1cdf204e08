package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/folio/pkg/display"
	"github.com/mesh-intelligence/folio/pkg/types"
)

const maxNameWidth = 40

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// quantityText renders q the way a holding row shows it: two whole digits at
// least, two decimals always, further decimals only when present.
func quantityText(q decimal.Decimal) string {
	p := display.Decompose(q)
	s := p.Whole + "." + p.MajorDecimal
	if p.MinorDecimal != "0" {
		s += p.MinorDecimal
	}
	return s
}

func checkbox(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeAssetTable renders assets as an aligned table. groupNames maps group
// IDs to names for the GROUP column.
func writeAssetTable(out io.Writer, assets []types.Asset, groupNames map[string]string) error {
	if len(assets) == 0 {
		_, err := fmt.Fprintln(out, "No assets.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEL\tID\tKIND\tNAME\tQUANTITY\tCURRENCY\tGROUP")
	for _, a := range assets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			checkbox(a.IsSelected),
			a.AssetID,
			a.Kind,
			truncate(a.DisplayName(), maxNameWidth),
			quantityText(a.Quantity),
			types.CurrencySymbol(a.Currency),
			truncate(groupNames[a.RelatedGroupID], maxNameWidth),
		)
	}
	return w.Flush()
}

// writeGroupTable renders groups with their member counts.
func writeGroupTable(out io.Writer, groups []types.Group) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(out, "No groups.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEL\tID\tNAME\tMEMBERS\tTARGET %")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", checkbox(g.IsSelected), g.GroupID,
			truncate(g.Name, maxNameWidth), len(g.AssetIDs), quantityText(g.TargetPercentage))
	}
	return w.Flush()
}

func groupNames(groups []types.Group) map[string]string {
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.GroupID] = g.Name
	}
	return names
}
