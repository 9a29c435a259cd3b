// Package config loads and validates the TOML configuration shared by the
// opuskit subcommands.
package config
