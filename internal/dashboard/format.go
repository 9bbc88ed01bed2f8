package dashboard

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// FormatCount renders a count as a thousands-separated integer, rounding
// halves to even
func FormatCount(v float64) string {
	return printer.Sprintf("%d", int64(math.RoundToEven(v)))
}

// FormatRate renders a percentage with two decimals and a percent sign
func FormatRate(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
