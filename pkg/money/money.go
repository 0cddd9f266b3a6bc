// Package money converts between decimal strings used on the wire and the integer minor units
// stored in the database.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits of a minor unit.
const Scale = 2

var ErrTooPrecise = errors.New("amount has more fraction digits than supported")

// Parse converts s (e.g. "3000.50") into minor units. It rejects values with more than Scale
// fraction digits instead of rounding them.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}

	shifted := d.Shift(Scale)
	if !shifted.IsInteger() {
		return 0, ErrTooPrecise
	}

	if shifted.BigInt().BitLen() > 62 {
		return 0, fmt.Errorf("amount %s is out of range", s)
	}

	return shifted.IntPart(), nil
}

// Format renders minor units as a fixed-point decimal string.
func Format(amount int64) string {
	return decimal.New(amount, -Scale).StringFixed(Scale)
}
