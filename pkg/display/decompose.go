// Package display splits quantities into the parts a holding row renders:
// a whole part, the first two decimals, and the remaining decimals.
package display

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parts is the display decomposition of a quantity.
type Parts struct {
	Whole        string // integer digits with sign, at least two characters
	MajorDecimal string // first two fractional digits, zero padded
	MinorDecimal string // remaining fractional digits, "0" when none remain
}

// Decompose formats value as a fixed-point base-10 string and splits it into
// display parts. The whole part is padded to two characters with a leading
// zero; the sign stays attached to it.
//
//	5     -> ("05", "00", "0")
//	12.3  -> ("12", "30", "0")
//	7.256 -> ("07", "25", "6")
func Decompose(value decimal.Decimal) Parts {
	whole, fraction, _ := strings.Cut(value.String(), ".")
	if len(whole) == 1 {
		whole = "0" + whole
	}

	major, minor := fraction, "0"
	if len(fraction) > 2 {
		major, minor = fraction[:2], fraction[2:]
	}
	for len(major) < 2 {
		major += "0"
	}

	return Parts{Whole: whole, MajorDecimal: major, MinorDecimal: minor}
}

// DecomposeFloat is Decompose for a float64, using the shortest decimal
// representation that round-trips the float. It panics on NaN or ±Inf.
func DecomposeFloat(v float64) Parts {
	return Decompose(decimal.NewFromFloat(v))
}

// String renders the parts as whole.majorminor.
func (p Parts) String() string {
	return p.Whole + "." + p.MajorDecimal + p.MinorDecimal
}

// Decimal reconstructs the decomposed number. Padding added by Decompose does
// not change the numeric value.
func (p Parts) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.String())
}
