// Package money converts between Brazilian-real currency text and decimal amounts.
//
// Amounts are carried as shopspring decimals so that "R$ 1.234,56" round-trips
// without binary floating-point drift.
package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Symbol            = "R$"
	thousandSeparator = "."
	decimalSeparator  = ","
)

// Cent is the smallest amount accepted for an entry total.
var Cent = decimal.New(1, -2)

// Parse converts locale currency text ("R$ 1.234,56", "1234,5", "-R$ 3,00") into a
// decimal. Empty or unparseable text yields zero.
func Parse(text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	s = strings.Replace(s, Symbol, "", 1)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}

	s = strings.ReplaceAll(s, thousandSeparator, "")
	if strings.Count(s, decimalSeparator) > 1 {
		return decimal.Zero
	}
	s = strings.Replace(s, decimalSeparator, ".", 1)
	if s == "" || strings.ContainsAny(s, "+-eE") {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// ParseMasked applies input-mask semantics to raw keystroke text: every non-digit is
// dropped and the remaining digits are read as cents ("1" -> 0,01; "123456" -> 1.234,56).
func ParseMasked(text string) decimal.Decimal {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return decimal.Zero
	}
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-2)
}

// Format renders d as "R$ 1.234,56", rounding half away from zero to two places.
func Format(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative && fixed != "0.00" {
		b.WriteString("-")
	}
	b.WriteString(Symbol)
	b.WriteString(" ")
	b.WriteString(groupThousands(intPart))
	b.WriteString(decimalSeparator)
	b.WriteString(fracPart)
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(thousandSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Number renders d rounded to cents as a JSON number literal.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
