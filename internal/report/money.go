package report

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// viPrinter renders numbers with Vietnamese digit grouping, so a
// 200000 VND shortfall prints as "200.000".
var viPrinter = message.NewPrinter(language.Vietnamese)

// FormatMoney renders an amount rounded to whole VND with grouping.
func FormatMoney(v float64) string {
	return viPrinter.Sprintf("%d", int64(math.Round(v)))
}
