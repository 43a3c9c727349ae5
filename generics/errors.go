package generics

import "errors"

var (
	ErrNoTable         = errors.New("generics: table not configured")
	ErrNoUploadHandler = errors.New("generics: upload handler not configured")
)
