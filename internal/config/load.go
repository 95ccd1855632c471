package config

import (
	"fmt"

	"github.com/yndnr/cfkv/internal/infra/confloader"
)

// Load builds the configuration from Default(), the YAML file at path
// (skipped when empty), CFKV_ environment variables and overrides, in
// increasing priority, and verifies the result. The returned loader can
// reload the same sources later.
func Load(path string, overrides map[string]any) (*Config, *confloader.Loader, error) {
	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)

	cfg := Default()
	if err := l.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, l, nil
}

// Reload reads every source of l again on top of fresh defaults.
func Reload(l *confloader.Loader) (*Config, error) {
	cfg := Default()
	if err := l.Reload(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
