package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMoney = errors.New("invalid money amount")

	// MaxPrice matches the NUMERIC(12,2) column.
	MaxPrice = decimal.RequireFromString("9999999999.99")
)

// ParsePrice accepts "15000", "15000.50", "15.000", "15.000,50", "15,000" or "15,000.50"
// and rounds to 2 places.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, ErrInvalidMoney
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidMoney, err)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidMoney
	}
	if d.GreaterThan(MaxPrice) {
		return decimal.Zero, fmt.Errorf("%w: too large", ErrInvalidMoney)
	}
	return d.Round(2), nil
}

// normalizeSeparators rewrites s with '.' as the only decimal mark. When both '.' and ','
// appear the last one is the decimal mark. A lone separator kind is read as thousands
// when every group after the first has exactly three digits.
func normalizeSeparators(s string) string {
	dot, comma := strings.LastIndexByte(s, '.'), strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if thousandsGroups(s, ',') {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case dot >= 0:
		if thousandsGroups(s, '.') {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// thousandsGroups reports whether s splits on sep into a leading group of 1-3 digits
// without a leading zero, followed by groups of exactly three.
func thousandsGroups(s string, sep byte) bool {
	parts := strings.Split(s, string(sep))
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 || parts[0][0] == '0' {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// FormatRupiah renders d as "Rp 15.000" or "Rp 15.000,50".
func FormatRupiah(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	d = d.Round(2)

	whole := d.Truncate(0)
	frac := d.Sub(whole).Shift(2).IntPart()

	digits := whole.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "Rp " + sign + b.String()
	if frac != 0 {
		out += fmt.Sprintf(",%02d", frac)
	}
	return out
}
