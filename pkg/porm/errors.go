package porm

import "errors"

var (
	ErrNoRows            = errors.New("porm: no rows")
	ErrUnknownConnection = errors.New("porm: unknown connection")
	ErrEmptyData         = errors.New("porm: nothing to write")
	ErrInvalidIdentifier = errors.New("porm: invalid identifier")
	ErrUnsafeWrite       = errors.New("porm: refusing to write without a filter")
	ErrQueryFailed       = errors.New("porm: query failed")
	ErrTxFailed          = errors.New("porm: transaction failed")
)
