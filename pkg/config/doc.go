// Package config handles configuration management for buildenv.
// It layers embedded defaults, an optional TOML file and BUILDENV_
// environment variables.
package config
