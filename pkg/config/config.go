package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type options struct {
	environ  map[string]string
	file     string
	prefix   string
	optional bool
}

// Option configures Load.
type Option func(*options)

// WithFile reads path as YAML before the environment is applied. The file must exist.
// An empty path is ignored.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
		o.optional = false
	}
}

// WithOptionalFile is WithFile that tolerates a missing file.
func WithOptionalFile(path string) Option {
	return func(o *options) {
		o.file = path
		o.optional = true
	}
}

// WithPrefix prepends prefix to every variable name, e.g. "APP_".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithEnvironment replaces the process environment as the variable source.
func WithEnvironment(environ map[string]string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// Load builds a T from an optional YAML file and environment variables.
// Precedence: environment, then file, then envDefault tags.
// Variables tagged required must come from the environment.
//
// Example:
//
//	type Config struct {
//		Addr string    `env:"ADDR" envDefault:":8080" yaml:"addr"`
//		DB   db.Config `yaml:"db"`
//	}
//
//	cfg, err := config.Load[Config](config.WithOptionalFile(os.Getenv("CONFIG_FILE")))
func Load[T any](opts ...Option) (T, error) {
	var cfg T
	if err := LoadInto(&cfg, opts...); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadInto is Load for an existing struct pointer.
func LoadInto(dst any, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.file != "" {
		if err := readFile(dst, o.file, o.optional); err != nil {
			return err
		}
	}

	envOpts := env.Options{
		Prefix:                       o.prefix,
		SetDefaultsForZeroValuesOnly: true,
	}
	if o.environ != nil {
		envOpts.Environment = o.environ
	}
	if err := env.ParseWithOptions(dst, envOpts); err != nil {
		return errors.Join(ErrParseEnv, err)
	}
	return nil
}

func readFile(dst any, path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Join(ErrReadFile, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrParseFile, err)
	}
	return nil
}
