package config

import "testing"

func TestEnvVarToYAMLKey(t *testing.T) {
	if got := envVarToYAMLKey("SCAN_TIMEOUT"); got != "scan_timeout" {
		t.Errorf("got %q", got)
	}
	if got := envVarToYAMLKey("ENGINES__MQTT__ENABLED"); got != "engines.mqtt.enabled" {
		t.Errorf("got %q", got)
	}
}

func TestApplyEnv_NestedKeyOverridesEngineToggle(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("HEARSAY__ENGINES__MQTT__ENABLED", "false")
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Engines.MQTT.Enabled {
		t.Errorf("expected mqtt engine disabled via env override")
	}
}

func TestApplyEnv_NilConfig(t *testing.T) {
	if err := ApplyEnv(nil); err != ErrConfigNil {
		t.Errorf("expected ErrConfigNil, got %v", err)
	}
}

func TestSetByYAMLKey_UnknownKeyIsNoOp(t *testing.T) {
	cfg := DefaultConfig()
	if err := SetByYAMLKey(cfg, "not.a.real.key", "value"); err != nil {
		t.Errorf("expected no error for unknown key, got %v", err)
	}
}

func TestSetByYAMLKey_NilConfig(t *testing.T) {
	if err := SetByYAMLKey(nil, "scan_timeout", "5s"); err != ErrConfigNil {
		t.Errorf("expected ErrConfigNil, got %v", err)
	}
}
