package dividends

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberFromMixedString keeps only digits, '.' and '-' and parses what is
// left. "$1,234.56" yields 1234.56. Locale thousands separators are not
// understood: "€ 1.234,56" yields 1.23456.
func NumberFromMixedString(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatMoney renders an amount with two decimals, prefixed by the symbol
// and a space when a symbol is known.
func FormatMoney(symbol string, amount float64) string {
	s := decimal.NewFromFloat(amount).StringFixed(2)
	if symbol == "" {
		return s
	}
	return symbol + " " + s
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
