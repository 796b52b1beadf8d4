// Package money formats loss amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatWhole rounds v to whole currency units (half away from zero) and
// renders it with thousands separators, e.g. FormatWhole(50000000.4, "$")
// returns "$50,000,000".
func FormatWhole(v float64, symbol string) string {
	return Format(v, symbol, 0)
}

// Format rounds v to places decimals and renders it with thousands separators
func Format(v float64, symbol string, places int32) string {
	d := decimal.NewFromFloat(v).Round(places)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(places)
	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(symbol)
	b.WriteString(groupThousands(intPart))
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
