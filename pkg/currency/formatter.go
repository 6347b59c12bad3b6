package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders an amount with two decimals and comma grouping,
// e.g. "INR 9,000.00".
func Format(amount decimal.Decimal, code string) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	formatted := addThousandsSeparator(intPart, ",") + "." + fracPart

	result := formatted
	if code != "" {
		result = code + " " + formatted
	}
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
