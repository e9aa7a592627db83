package models

import "errors"

var (
	// ErrDataUnavailable means the price provider had no price point for the
	// requested date or no 52-week high for the symbol.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidHigh means the 52-week high cannot be used as a divisor.
	ErrInvalidHigh = errors.New("invalid 52-week high")
)
