package config

// Global configuration instance
var globalConfig *Config

// Initialize sets up the global configuration
func Initialize(cfg *Config) {
	if cfg == nil {
		cfg = Default()
	}
	globalConfig = cfg
}

// Get returns the current configuration
func Get() *Config {
	if globalConfig == nil {
		Initialize(nil)
	}
	return globalConfig
}

// GetCompose returns composition configuration
func GetCompose() Compose {
	return Get().Compose
}

// GetPublish returns publishing configuration
func GetPublish() Publish {
	return Get().Publish
}
