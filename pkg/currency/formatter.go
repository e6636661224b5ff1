package currency

import (
	"fmt"
	"math"
)

// RoundCents rounds an amount to two decimal places. All pricing arithmetic
// in the booking engine settles through this so derived totals stay exact.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Format renders an amount for display, e.g. "USD 1,234.56". Unknown
// currencies get the same treatment; there is no locale handling here.
func Format(amount float64, code string) string {
	rounded := RoundCents(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	whole := math.Floor(rounded)
	cents := int(math.Round((rounded - whole) * 100))

	intStr := fmt.Sprintf("%.0f", whole)
	formatted := fmt.Sprintf("%s %s.%02d", code, addThousandsSeparator(intStr, ","), cents)

	if negative {
		formatted = "-" + formatted
	}

	return formatted
}

func FormatUSD(amount float64) string {
	return Format(amount, "USD")
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
