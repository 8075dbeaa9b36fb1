package config

import (
	"fmt"
	"runtime"
)

// Compose holds settings passed to the composition engine
type Compose struct {
	// SyntheticRankFloor is the first rank handed to propagated packages;
	// explicit priorities must stay below it
	SyntheticRankFloor int `koanf:"synthetic_rank_floor"`
	// DefaultPriority applies to packages whose lock entry sets none
	DefaultPriority int `koanf:"default_priority"`
	// System selects lock entries; empty means the running platform
	System string `koanf:"system"`
	// ExtraIgnore names entries that are never linked, on top of the
	// built-in metadata names
	ExtraIgnore []string `koanf:"extra_ignore"`
}

// Publish holds settings for swapping a composed tree into place
type Publish struct {
	KeepBackup bool `koanf:"keep_backup"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Verbosity int `koanf:"verbosity"`
}

// Config is the main configuration structure
type Config struct {
	Compose Compose       `koanf:"compose"`
	Publish Publish       `koanf:"publish"`
	Logging LoggingConfig `koanf:"logging"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Compose: Compose{
			SyntheticRankFloor: 1000,
			DefaultPriority:    5,
		},
	}
}

// Validate checks the relations between settings
func (c *Config) Validate() error {
	if c.Compose.SyntheticRankFloor <= 0 {
		return fmt.Errorf("compose.synthetic_rank_floor must be positive, got %d", c.Compose.SyntheticRankFloor)
	}
	if c.Compose.DefaultPriority < 0 {
		return fmt.Errorf("compose.default_priority must not be negative, got %d", c.Compose.DefaultPriority)
	}
	if c.Compose.DefaultPriority >= c.Compose.SyntheticRankFloor {
		return fmt.Errorf("compose.default_priority %d must be below compose.synthetic_rank_floor %d",
			c.Compose.DefaultPriority, c.Compose.SyntheticRankFloor)
	}
	return nil
}

// TargetSystem returns the configured system or the running platform in
// <arch>-<os> form (x86_64-linux, aarch64-darwin, ...)
func (c *Config) TargetSystem() string {
	if c.Compose.System != "" {
		return c.Compose.System
	}
	return CurrentSystem()
}

// CurrentSystem describes the running platform in <arch>-<os> form
func CurrentSystem() string {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	}
	return arch + "-" + runtime.GOOS
}
