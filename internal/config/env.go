package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "RECORDCHECK_"

// Env holds the settings that may come from the environment.
// Zero values mean "not set" and leave the current configuration alone.
type Env struct {
	OutputDir  string `env:"OUTPUT_DIR"`
	BatchSize  int    `env:"BATCH_SIZE"`
	DBDir      string `env:"DB_DIR"`
	ConfigFile string `env:"CONFIG"`
	LogFormat  string `env:"LOG_FORMAT"`
	NoDB       bool   `env:"NO_DB"`
	NoClean    bool   `env:"NO_CLEAN"`
	Verbose    bool   `env:"VERBOSE"`
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) into the process environment. Variables that are already set win.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ParseEnv reads RECORDCHECK_* variables. When environ is nil the process
// environment is used; tests pass an explicit map.
func ParseEnv(environ map[string]string) (Env, error) {
	var e Env
	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// Apply copies the settings that were set onto cfg.
func (e Env) Apply(cfg *Config) {
	if e.OutputDir != "" {
		cfg.OutputDir = e.OutputDir
	}
	if e.BatchSize != 0 {
		cfg.BatchSize = e.BatchSize
	}
	if e.DBDir != "" {
		cfg.DBDir = e.DBDir
	}
	if e.ConfigFile != "" {
		cfg.ConfigFilePath = e.ConfigFile
	}
	if e.LogFormat != "" {
		cfg.LogFormat = e.LogFormat
	}
	if e.NoDB {
		cfg.SaveToDB = false
	}
	if e.NoClean {
		cfg.WriteCleaned = false
	}
	if e.Verbose {
		cfg.Verbose = true
	}
}
