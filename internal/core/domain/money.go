package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Status classifies a final balance.
type Status int

const (
	StatusNormal Status = iota
	StatusOverdraft
)

// Wire codes used by the HTTP API.
const (
	codeNormal    = 1
	codeOverdraft = 2
)

// StatusOf returns StatusOverdraft for negative balances and StatusNormal otherwise.
// Zero is normal.
func StatusOf(balance decimal.Decimal) Status {
	if balance.IsNegative() {
		return StatusOverdraft
	}
	return StatusNormal
}

// Code returns the numeric code exposed to API clients (1 = normal, 2 = overdraft).
func (s Status) Code() int {
	if s == StatusOverdraft {
		return codeOverdraft
	}
	return codeNormal
}

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusOverdraft:
		return "overdraft"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Accepted amounts have at most MaxIntegerDigits digits before the decimal
// point and at most MaxScale after it.
const (
	MaxIntegerDigits = 309
	MaxScale         = 64
	MaxAmountLength  = 512
)

var (
	ErrInvalidAmount    = errors.New("amount is not a decimal number")
	ErrAmountOutOfRange = errors.New("amount is outside the float64 range")
	ErrAmountTooPrecise = fmt.Errorf("amount has more than %d decimal places", MaxScale)
	ErrAmountTooLong    = fmt.Errorf("amount is longer than %d characters", MaxAmountLength)
)

// ParseAmount parses a decimal string and rejects values whose magnitude or
// scale would make exact arithmetic on them unbounded. Only the exponent and
// digit count are inspected; the value is never expanded.
func ParseAmount(s string) (decimal.Decimal, error) {
	if len(s) > MaxAmountLength {
		return decimal.Decimal{}, ErrAmountTooLong
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	exp := int64(d.Exponent())
	if exp < -MaxScale {
		return decimal.Decimal{}, ErrAmountTooPrecise
	}
	if exp+int64(d.NumDigits()) > MaxIntegerDigits {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	if _, err := ToFloat(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// ToFloat converts an exact decimal amount to float64 for the wire.
// It fails when the value overflows float64.
func ToFloat(amount decimal.Decimal) (float64, error) {
	f := amount.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrAmountOutOfRange
	}
	return f, nil
}
