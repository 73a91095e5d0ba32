package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the settings of an intcode invocation. It is read from an
// intcode.toml file and then overridden by command-line flags.
type Config struct {
	Input   string `toml:"input"`
	Noun    int64  `toml:"noun"`
	Verb    int64  `toml:"verb"`
	Search  bool   `toml:"search"`
	Target  int64  `toml:"target"`
	Workers int    `toml:"workers"`
	Cache   string `toml:"cache"`
	Trace   bool   `toml:"trace"`
}

const defaultConfigFile = "intcode.toml"

func defaultConfig() Config {
	return Config{
		Noun:    12,
		Verb:    2,
		Target:  19690720,
		Workers: 1,
	}
}

// loadConfig reads the config file at path on top of the defaults.
// A missing file is only an error if required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		return cfg, fmt.Errorf("%s: workers must be at least 1, got %d", path, cfg.Workers)
	}
	return cfg, nil
}
