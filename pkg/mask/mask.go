// Package mask holds the input formatters used by the payment and student
// forms: Brazilian phone numbers and BRL currency values.
package mask

import (
	"fmt"
	"strconv"
	"strings"
)

// Phone formats a digit string as a Brazilian phone number. The mask is
// progressive so partially typed values render sensibly: "21" -> "(21",
// "219941" -> "(21) 9941", "21994152560" -> "(21) 99415-2560". Non-digit
// characters are stripped and input is truncated to 11 digits.
func Phone(raw string) string {
	digits := PhoneDigits(raw)
	if len(digits) > 11 {
		digits = digits[:11]
	}

	switch {
	case len(digits) == 0:
		return ""
	case len(digits) <= 2:
		return "(" + digits
	case len(digits) <= 6:
		return fmt.Sprintf("(%s) %s", digits[:2], digits[2:])
	case len(digits) <= 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:])
	default:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:7], digits[7:])
	}
}

// PhoneDigits strips everything but digits, undoing Phone.
func PhoneDigits(masked string) string {
	var b strings.Builder
	for _, r := range masked {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Currency renders an amount in minor units (centavos) as BRL text:
// 12345 -> "R$ 123,45". Thousands take a dot separator: 123456789 ->
// "R$ 1.234.567,89". Negative amounts keep the sign before the symbol value.
func Currency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	return fmt.Sprintf("R$ %s%s,%02d", sign, groupThousands(whole), frac)
}

// CurrencyFromDigits masks a raw digit string as typed in a currency input;
// the digit run is interpreted as centavos: "12345" -> "R$ 123,45".
func CurrencyFromDigits(raw string) string {
	digits := PhoneDigits(raw)
	if digits == "" {
		return Currency(0)
	}
	cents, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Currency(0)
	}
	return Currency(cents)
}

// ParseCurrency converts masked BRL text back to a float amount in reais:
// "R$ 123,45" -> 123.45. Plain numeric strings ("123.45", "123,45") are
// accepted too. An empty value parses as zero.
func ParseCurrency(masked string) (float64, error) {
	cents, err := CurrencyCents(masked)
	if err != nil {
		return 0, err
	}
	return float64(cents) / 100, nil
}

// CurrencyCents converts masked BRL text to minor units: "R$ 123,45" -> 12345.
func CurrencyCents(masked string) (int64, error) {
	s := strings.TrimSpace(masked)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse currency %q: %w", masked, err)
	}

	cents := int64(value*100 + 0.5)
	if negative {
		cents = -cents
	}
	return cents, nil
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
