package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		Path:    ":memory:",
		Timeout: 1 * time.Second,
	}
	cfg.Paging.Debounce = 20 * time.Millisecond
	cfg.Cache.Backend = "memory"
	cfg.Cache.Path = ""
	cfg.Source.HTTPTimeout = 5 * time.Second
	cfg.Source.UserAgent = "lazyload-test/1.0"
	cfg.Log = LogConfig{Backend: "nop", Level: "debug"}
	return cfg
}
