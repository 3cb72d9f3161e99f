// Package currency renders amounts for display in the storefront's fixed
// id-ID locale. Pure formatting only; callers pass already-validated
// numbers.
package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount as Indonesian rupiah, e.g. 2100 -> "Rp2.100".
// Fractions are rounded away; rupiah display is whole units.
func Rupiah(amount float64) string {
	return printer.Sprintf("Rp%v", number.Decimal(amount, number.MaxFractionDigits(0)))
}
