package config

import (
	"fmt"
	"sync"
)

var (
	// current is the process-wide configuration.
	current *Config

	// currentMu guards current.
	currentMu sync.RWMutex
)

// GetConfig returns the process-wide configuration, or nil before the first
// SetConfig.
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetConfig replaces the process-wide configuration.
func SetConfig(cfg *Config) {
	currentMu.Lock()
	current = cfg
	currentMu.Unlock()
}

// ReloadConfig loads path again and swaps it in. On failure the current
// configuration is kept.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	SetConfig(cfg)
	return nil
}
