package config

import (
	"fmt"
	"os"
	"strings"
)

const envPrefix = "HEARSAY__"

// ApplyEnv overlays environment variables of the form HEARSAY__SECTION__KEY
// onto cfg, using the same setting registry the YAML and flag layers use.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return ErrConfigNil
	}

	settings := settingsByYAMLKey()

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envPrefix) {
			continue
		}

		rest := strings.TrimPrefix(k, envPrefix)
		if rest == "" {
			continue
		}

		yamlKey := envVarToYAMLKey(rest)
		setting, exists := settings[yamlKey]
		if !exists || setting.Set == nil {
			continue
		}

		if err := setting.Set(cfg, v); err != nil {
			return fmt.Errorf("env %s: %w", k, err)
		}
	}

	return nil
}

func envVarToYAMLKey(s string) string {
	parts := strings.Split(s, "__")
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, ".")
}

// SetByYAMLKey applies a single value to cfg by its YAML key, used for flag overrides.
func SetByYAMLKey(cfg *Config, yamlKey, value string) error {
	if cfg == nil {
		return ErrConfigNil
	}

	settings := settingsByYAMLKey()
	setting, exists := settings[yamlKey]
	if !exists || setting.Set == nil {
		return nil
	}

	if err := setting.Set(cfg, value); err != nil {
		return fmt.Errorf("setting %s: %w", yamlKey, err)
	}
	return nil
}
