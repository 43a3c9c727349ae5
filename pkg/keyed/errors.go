package keyed

import "errors"

var (
	ErrInvalidJSON = errors.New("keyed: invalid JSON")
	ErrNotObject   = errors.New("keyed: JSON value is not an object")
)
