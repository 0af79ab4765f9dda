package domain

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits every Amount carries.
const AmountScale = 4

// ErrParseAmount is returned when the text is not a plain decimal literal.
var ErrParseAmount = errors.New("invalid amount")

// Amount is a signed fixed-point number with exactly four fractional digits.
// The coefficient is an arbitrary precision integer, so Add and Sub never overflow.
// The zero value is 0.0000.
type Amount struct {
	d decimal.Decimal
}

// ZeroAmount returns 0.0000.
func ZeroAmount() Amount {
	return Amount{d: decimal.New(0, -AmountScale)}
}

// ParseAmount parses text of the form [+-]digits[.digits].
// Digits past the fourth fractional place are truncated, never rounded.
func ParseAmount(text string) (Amount, error) {
	return ParseAmountLimit(text, 0)
}

// ParseAmountLimit is ParseAmount with an upper bound on the number of integer digits.
// A maxIntegerDigits of 0 disables the check.
func ParseAmountLimit(text string, maxIntegerDigits int) (Amount, error) {
	s := strings.TrimSpace(text)

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if !isDigits(intPart) || (hasDot && !isDigits(fracPart)) {
		return Amount{}, errors.Wrapf(ErrParseAmount, "%q", text)
	}
	if maxIntegerDigits > 0 && len(intPart) > maxIntegerDigits {
		return Amount{}, errors.Wrapf(ErrParseAmount, "integer part of %q exceeds %d digits", text, maxIntegerDigits)
	}

	if len(fracPart) > AmountScale {
		fracPart = fracPart[:AmountScale]
	}
	fracPart += strings.Repeat("0", AmountScale-len(fracPart))

	literal := intPart + "." + fracPart
	if neg {
		literal = "-" + literal
	}

	d, err := decimal.NewFromString(literal)
	if err != nil {
		return Amount{}, errors.Wrapf(ErrParseAmount, "%q: %v", text, err)
	}

	return newAmount(d), nil
}

// MustParseAmount is like ParseAmount but panics on malformed input.
func MustParseAmount(text string) Amount {
	a, err := ParseAmount(text)
	if err != nil {
		panic(err)
	}
	return a
}

// newAmount canonicalises d to a coefficient scaled by 10^4.
func newAmount(d decimal.Decimal) Amount {
	scaled := d.Shift(AmountScale).Truncate(0).BigInt()
	return Amount{d: decimal.NewFromBigInt(scaled, -AmountScale)}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Cmp returns -1, 0 or +1 depending on whether a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// Equal reports whether a and b hold the same value.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// GreaterThanOrEqual reports whether a >= b.
func (a Amount) GreaterThanOrEqual(b Amount) bool {
	return a.d.GreaterThanOrEqual(b.d)
}

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// String renders the amount with exactly four fractional digits.
func (a Amount) String() string {
	return a.d.StringFixed(AmountScale)
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
