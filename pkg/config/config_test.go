package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/pkg/config"
)

type testConfig struct {
	Name    string        `env:"NAME" envDefault:"pionia" yaml:"name"`
	Port    int           `env:"PORT" envDefault:"8080" yaml:"port"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s" yaml:"timeout"`
	Debug   bool          `env:"DEBUG" yaml:"debug"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load[testConfig](config.WithEnvironment(map[string]string{}))
		require.NoError(t, err)
		require.Equal(t, testConfig{Name: "pionia", Port: 8080, Timeout: 5 * time.Second}, cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "name: api\nport: 9000\ndebug: true\n")

		cfg, err := config.Load[testConfig](
			config.WithFile(path),
			config.WithEnvironment(map[string]string{}),
		)
		require.NoError(t, err)
		require.Equal(t, "api", cfg.Name)
		require.Equal(t, 9000, cfg.Port)
		require.True(t, cfg.Debug)
		require.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "port: 9000\ntimeout: 1m\n")

		cfg, err := config.Load[testConfig](
			config.WithFile(path),
			config.WithEnvironment(map[string]string{"PORT": "7000"}),
		)
		require.NoError(t, err)
		require.Equal(t, 7000, cfg.Port)
		require.Equal(t, time.Minute, cfg.Timeout)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load[testConfig](
			config.WithPrefix("APP_"),
			config.WithEnvironment(map[string]string{"APP_NAME": "svc", "NAME": "ignored"}),
		)
		require.NoError(t, err)
		require.Equal(t, "svc", cfg.Name)
	})

	t.Run("missing optional file", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load[testConfig](
			config.WithOptionalFile(filepath.Join(t.TempDir(), "absent.yaml")),
			config.WithEnvironment(map[string]string{}),
		)
		require.NoError(t, err)
		require.Equal(t, 8080, cfg.Port)
	})

	t.Run("missing required file", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load[testConfig](config.WithFile(filepath.Join(t.TempDir(), "absent.yaml")))
		require.ErrorIs(t, err, config.ErrReadFile)
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "port: [1, 2\n")

		_, err := config.Load[testConfig](config.WithFile(path))
		require.ErrorIs(t, err, config.ErrParseFile)
	})

	t.Run("malformed variable", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load[testConfig](config.WithEnvironment(map[string]string{"PORT": "eighty"}))
		require.ErrorIs(t, err, config.ErrParseEnv)
	})
}

func TestLoadInto(t *testing.T) {
	t.Parallel()

	cfg := testConfig{Name: "preset"}
	err := config.LoadInto(&cfg, config.WithEnvironment(map[string]string{"DEBUG": "true"}))
	require.NoError(t, err)
	require.Equal(t, "preset", cfg.Name)
	require.True(t, cfg.Debug)
}
