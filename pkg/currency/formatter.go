// Package currency formats offer prices for chat-facing output.
package currency

import (
	"fmt"
	"math"
)

// Format renders an amount as "USD 1,234.56". Currencies that are
// conventionally quoted without minor units get whole numbers.
func Format(amount float64, code string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	var formatted string
	if zeroDecimal(code) {
		formatted = addThousandsSeparator(fmt.Sprintf("%.0f", math.Round(amount)), ",")
	} else {
		whole := math.Floor(amount)
		cents := int(math.Round((amount - whole) * 100))
		if cents == 100 {
			whole++
			cents = 0
		}
		formatted = fmt.Sprintf("%s.%02d", addThousandsSeparator(fmt.Sprintf("%.0f", whole), ","), cents)
	}

	result := code + " " + formatted
	if negative {
		result = "-" + result
	}

	return result
}

func zeroDecimal(code string) bool {
	switch code {
	case "JPY", "KRW", "VND", "IDR", "XOF", "XAF", "CLP", "UGX", "RWF":
		return true
	}
	return false
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
