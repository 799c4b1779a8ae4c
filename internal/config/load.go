package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// RunMode selects how aggressively the config loader reads from disk.
type RunMode int

const (
	// ModeApp reads (and creates, if missing) the on-disk YAML config file.
	ModeApp RunMode = iota
	// ModeCLI skips the config file entirely, relying only on defaults, env
	// vars, and flag overrides. One-off `hearsay scan` invocations use this
	// mode so a stray config file never surprises a quick scan.
	ModeCLI
)

// LoadForMode merges defaults, (optionally) a YAML file, environment
// variables, and flag overrides into one Config, in that precedence order.
func LoadForMode(mode RunMode, flags *Flags) (*Config, error) {
	cfg := DefaultConfig()

	if mode == ModeApp {
		pathOverride := ""
		if flags != nil {
			pathOverride = flags.ConfigFile
		}

		resolvedPath, err := resolveConfigPath(pathOverride)
		if err != nil {
			return nil, err
		}

		if err := ensureConfigFile(resolvedPath); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(resolvedPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if flags != nil {
		for k, v := range flags.Overrides {
			if err := SetByYAMLKey(cfg, k, v); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadMerged is a convenience wrapper around LoadForMode(ModeApp, flags).
func LoadMerged(flags *Flags) (*Config, error) {
	return LoadForMode(ModeApp, flags)
}
