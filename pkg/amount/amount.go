// Package amount converts between token base units and decimal strings.
package amount

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Parse errors.
var (
	ErrEmpty     = errors.New("empty amount")
	ErrNegative  = errors.New("negative amount")
	ErrPrecision = errors.New("too many decimal places")
	ErrTooLarge  = errors.New("amount too large")
)

var maxUint64 = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// Format renders base units as a decimal string with all decimals shown.
func Format(units uint64, decimals uint8) string {
	return ToDecimal(units, decimals).StringFixed(int32(decimals))
}

// ToDecimal returns units scaled down by 10^decimals.
func ToDecimal(units uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -int32(decimals))
}

// Parse converts a decimal string such as "1.5" into base units.
func Parse(s string, decimals uint8) (uint64, error) {
	if s == "" {
		return 0, ErrEmpty
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}
	units := d.Shift(int32(decimals))
	if !units.Equal(units.Truncate(0)) {
		return 0, fmt.Errorf("%w (max %d)", ErrPrecision, decimals)
	}
	if units.GreaterThan(maxUint64) {
		return 0, ErrTooLarge
	}
	return units.BigInt().Uint64(), nil
}
