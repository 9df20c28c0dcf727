package view

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL форматирует сумму в реалах: "R$ 1.234,50".
func FormatBRL(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}

	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	return sign + "R$ " + b.String() + "," + frac
}

// FormatAmount форматирует количество без лишних нулей: 50, 12.5.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}
