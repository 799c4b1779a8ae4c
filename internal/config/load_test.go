package config

import "testing"

func TestLoadForMode_CLIModeIgnoresDiskAndAppliesFlagOverrides(t *testing.T) {
	t.Setenv(configEnvVar, "/should/not/be/read")

	flags := &Flags{Overrides: map[string]string{"scan_timeout": "15s"}}
	cfg, err := LoadForMode(ModeCLI, flags)
	if err != nil {
		t.Fatalf("LoadForMode: %v", err)
	}
	if cfg.ScanTimeout.String() != "15s" {
		t.Errorf("expected flag override to win, got %v", cfg.ScanTimeout)
	}
}

func TestLoadForMode_NilFlagsUsesDefaults(t *testing.T) {
	cfg, err := LoadForMode(ModeCLI, nil)
	if err != nil {
		t.Fatalf("LoadForMode: %v", err)
	}
	if cfg.ScanTimeout != DefaultScanTimeout {
		t.Errorf("expected default scan timeout, got %v", cfg.ScanTimeout)
	}
}

func TestLoadForMode_ReturnsErrorForBadOverride(t *testing.T) {
	flags := &Flags{Overrides: map[string]string{"scan_timeout": "not-a-duration"}}
	if _, err := LoadForMode(ModeCLI, flags); err == nil {
		t.Errorf("expected an error for an unparseable override")
	}
}
