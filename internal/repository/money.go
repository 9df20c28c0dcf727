package repository

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrTooPrecise возвращается, если сумма содержит больше двух знаков после запятой.
var ErrTooPrecise = errors.New("amount has more than two decimal places")

// ErrOutOfRange возвращается, если сумма в сотых долях не помещается в int64.
var ErrOutOfRange = errors.New("amount out of range")

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ToCents переводит сумму в сотые доли единицы.
func ToCents(amount float64) (int64, error) {
	d := decimal.NewFromFloat(amount)
	if !d.Equal(d.Round(2)) {
		return 0, ErrTooPrecise
	}
	cents := d.Shift(2)
	if !cents.IsInteger() || cents.Abs().GreaterThan(maxCents) {
		return 0, ErrOutOfRange
	}
	return cents.IntPart(), nil
}

// FromCents переводит сотые доли в единицы.
func FromCents(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}
