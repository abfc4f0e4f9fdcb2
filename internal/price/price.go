// Package price normalizes the locale-ambiguous price strings found in
// operator-edited catalogs ("R$ 1.234,56", "12,50", "consulte") into a
// canonical value and display label.
package price

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyMarker prefixes every formatted amount.
const CurrencyMarker = "R$"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// ParseAmount parses a raw price string into a decimal value. Mixed
// separators are resolved the Brazilian way: "." groups thousands and ","
// marks decimals. The second return value is false when the string does not
// hold a finite number.
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)

	// Strip currency markers and whitespace
	for _, marker := range []string{"R$", "r$", "$"} {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		// "1.234,56": "." is a thousands separator, "," the decimal one
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		// "12,50": "," is the decimal separator
		s = strings.ReplaceAll(s, ",", ".")
	}

	if s == "" {
		return 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// IsAmount reports whether raw parses as an amount.
func IsAmount(raw string) bool {
	_, ok := ParseAmount(raw)
	return ok
}

// FormatAmount renders a value as currency with two fraction digits and
// pt-BR grouping, e.g. "R$ 1.234,50".
func FormatAmount(n float64) string {
	return printer.Sprintf("%s %.2f", CurrencyMarker, n)
}

// NormalizeLabel returns the canonical display string for a price field.
// Non-numeric labels such as "Sob consulta" pass through trimmed.
func NormalizeLabel(raw string) string {
	if n, ok := ParseAmount(raw); ok {
		return FormatAmount(n)
	}
	return strings.TrimSpace(raw)
}
