package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL formats an amount as Brazilian reais, e.g. "R$ 1.234,50".
func FormatBRL(amount decimal.Decimal) string {
	return "R$ " + FormatNumber(amount, 2)
}

// FormatNumber renders amount with places decimals, dot thousands and comma decimals.
func FormatNumber(amount decimal.Decimal, places int32) string {
	s := amount.Abs().StringFixed(places)

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.Grow(len(s) + len(intPart)/3 + 1)
	if amount.Round(places).IsNegative() {
		b.WriteByte('-')
	}

	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}

	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatQuantity drops trailing zeros: 2 -> "2", 1.50 -> "1,5".
func FormatQuantity(q decimal.Decimal) string {
	return strings.Replace(q.String(), ".", ",", 1)
}
