// Package config provides configuration structures and utilities for
// recordcheck. It defines the run options (inputs, output directory, report
// format, history database), the environment overrides, and the optional
// .recordcheck rules file that tunes the thresholds of the check catalog.
//
// Values are layered in a fixed order: NewConfig defaults, then RECORDCHECK_*
// environment variables (optionally from a .env file), then command-line
// flags the operator set explicitly. Validate runs once at the end.
package config
