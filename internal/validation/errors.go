package validation

import "errors"

// ErrInvalidAmount возвращается, если строка не является неотрицательным числом.
var ErrInvalidAmount = errors.New("invalid amount")
