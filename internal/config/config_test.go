package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.validateAndNormalize(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateAndNormalizeFixesInvalidValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScanTimeout = 0
	cfg.MulticastTTL = 99
	cfg.UPnP.MX = 0
	cfg.Engines = EngineConfig{}

	err := cfg.validateAndNormalize()
	if err == nil {
		t.Fatalf("expected validation error listing the fixed fields")
	}
	if cfg.ScanTimeout != DefaultScanTimeout {
		t.Errorf("scan timeout not normalized: %v", cfg.ScanTimeout)
	}
	if cfg.MulticastTTL != DefaultMulticastTTL {
		t.Errorf("multicast ttl not normalized: %v", cfg.MulticastTTL)
	}
	if !cfg.Engines.UPnP.Enabled || !cfg.Engines.CoAP.Enabled {
		t.Errorf("expected all engines re-enabled when none were selected")
	}
}

func TestApplyEnvOverridesSetting(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("HEARSAY__SCAN_TIMEOUT", "15s")
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.ScanTimeout.String() != "15s" {
		t.Errorf("expected scan timeout 15s, got %v", cfg.ScanTimeout)
	}
}

func TestSetByYAMLKey(t *testing.T) {
	cfg := DefaultConfig()
	if err := SetByYAMLKey(cfg, "engines.mqtt.enabled", "false"); err != nil {
		t.Fatalf("set by yaml key: %v", err)
	}
	if cfg.Engines.MQTT.Enabled {
		t.Errorf("expected mqtt engine disabled")
	}
}

func TestGenerateDefaultYAMLNonEmpty(t *testing.T) {
	out := GenerateDefaultYAML()
	if out == "" {
		t.Fatalf("expected non-empty YAML")
	}
}
