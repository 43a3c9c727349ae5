package backends

import "errors"

var (
	ErrTokenNotFound = errors.New("backends: token not found")
	ErrNoSubject     = errors.New("backends: token has no subject")
	ErrNoSecret      = errors.New("backends: signing secret is not configured")
)
