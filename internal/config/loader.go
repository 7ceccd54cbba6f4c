package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default rules file name.
const DefaultConfigFile = ".recordcheck"

// XDGRulesFile is the rules file name inside the XDG config directory.
const XDGRulesFile = "rules.yaml"

// ErrConfigNotFound is returned when the rules file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads check rules from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that is fatal based on whether the path was
// explicitly specified by the user.
func LoadConfigFile(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &rf, nil
}

// FindConfigFile searches for the rules file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .recordcheck in the current directory
// 3. Look for rules.yaml in the XDG config directory
// 4. Look for .recordcheck in the user's home directory
//
// Returns the path to the rules file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), XDGRulesFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// LoadRules resolves and loads the rules file for cfg.
// An explicit path that does not exist is an error; a missing implicit file
// leaves cfg.RulesFile nil so the built-in catalog applies.
func LoadRules(cfg *Config) error {
	path := FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	rf, err := LoadConfigFile(path)
	if err != nil {
		return err
	}
	cfg.RulesFile = rf
	return nil
}
