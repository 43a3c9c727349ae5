// Package config loads configuration structs from a YAML file and environment variables.
//
// Structs declare both sources with tags, the way db.Config, redis.Config and
// storage.Config already do:
//
//	type Config struct {
//		Addr  string         `env:"ADDR" envDefault:":8080" yaml:"addr"`
//		DB    db.Config      `yaml:"db"`
//		Redis redis.Config   `yaml:"redis"`
//		Files storage.Config `yaml:"storage"`
//	}
//
//	cfg, err := config.Load[Config](
//		config.WithOptionalFile("config.yaml"),
//	)
//
// The environment wins over the file, and envDefault values only fill fields
// left empty by both.
package config
