package reconcile

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var half = decimal.NewFromFloat(0.5)

// displayLanguage drives digit grouping in the grid ("1.234.567")
var displayLanguage = language.Spanish

// roundHalfUp rounds d to the given number of decimal places with ties going
// towards positive infinity (2.5 -> 3, -2.5 -> -2).
func roundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(half).Floor().Shift(-places)
}

// groupThousands formats the integer part of v with locale digit grouping.
func groupThousands(v decimal.Decimal) string {
	return message.NewPrinter(displayLanguage).Sprintf("%d", v.IntPart())
}
