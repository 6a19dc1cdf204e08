package types

import money "github.com/Rhymond/go-money"

// ValidCurrency reports whether code is an ISO 4217 currency code known to
// go-money. Codes are case sensitive ("EUR", not "eur").
func ValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// CurrencySymbol returns the display grapheme for code ("€" for "EUR"), or the
// code itself when it is unknown.
func CurrencySymbol(code string) string {
	if c := money.GetCurrency(code); c != nil {
		return c.Grapheme
	}
	return code
}
