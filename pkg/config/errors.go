package config

import "errors"

var (
	ErrReadFile  = errors.New("config: failed to read config file")
	ErrParseFile = errors.New("config: failed to parse config file")
	ErrParseEnv  = errors.New("config: failed to parse environment")
)
