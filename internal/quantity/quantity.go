// Package quantity splits "value + unit" fragments such as "50g" or
// "1/2 un" into a decimal amount and a unit of measurement.
package quantity

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrInvalid is wrapped by every error returned from Split.
var ErrInvalid = errors.New("invalid quantity")

// Split separates text into its numeric value and unit. The boundary is the
// last digit in the string: everything up to it is the value, the rest is
// the unit. Values of the form "p/q" are divided.
func Split(text string) (decimal.Decimal, string, error) {
	end := lastDigitEnd(text)
	if end < 0 {
		return decimal.Zero, "", fmt.Errorf("%w: no value found in %q", ErrInvalid, text)
	}

	value := strings.TrimSpace(text[:end])
	unit := strings.TrimSpace(text[end:])

	amount, err := parseValue(value)
	if err != nil {
		return decimal.Zero, "", err
	}

	return amount, unit, nil
}

// lastDigitEnd returns the byte offset just past the last digit in s, or -1.
func lastDigitEnd(s string) int {
	for i := len(s); i > 0; {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if unicode.IsDigit(r) {
			return i
		}

		i -= size
	}

	return -1
}

func parseValue(s string) (decimal.Decimal, error) {
	if !strings.Contains(s, "/") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalid, s)
		}

		return d, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return decimal.Zero, fmt.Errorf("%w: %q is not a fraction", ErrInvalid, s)
	}

	p, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad numerator in %q", ErrInvalid, s)
	}

	q, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad denominator in %q", ErrInvalid, s)
	}

	if q.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: zero denominator in %q", ErrInvalid, s)
	}

	return p.Div(q), nil
}
