package config

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterGlobalConfigFlags_StringFlagOverrideFlowsIntoOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	flags := &Flags{}
	RegisterGlobalConfigFlags(cmd, flags)

	cmd.SetArgs([]string{"--timeout", "15s"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if flags.Overrides["scan_timeout"] != "15s" {
		t.Errorf("expected scan_timeout override, got %v", flags.Overrides)
	}
}

func TestRegisterGlobalConfigFlags_BoolFlagOverrideFlowsIntoOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	flags := &Flags{}
	RegisterGlobalConfigFlags(cmd, flags)

	cmd.SetArgs([]string{"--mqtt=false"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if flags.Overrides["engines.mqtt.enabled"] != "false" {
		t.Errorf("expected engines.mqtt.enabled=false override, got %v", flags.Overrides)
	}
}

func TestRegisterGlobalConfigFlags_UnchangedFlagsProduceNoOverride(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	flags := &Flags{}
	RegisterGlobalConfigFlags(cmd, flags)

	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(flags.Overrides) != 0 {
		t.Errorf("expected no overrides when no flags were passed, got %v", flags.Overrides)
	}
}

func TestRegisterGlobalConfigFlags_NilFlagsIsNoOp(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	RegisterGlobalConfigFlags(cmd, nil)
}

func TestChainPersistentPreRun_RunsBothInOrder(t *testing.T) {
	var order []string
	first := func(*cobra.Command, []string) error {
		order = append(order, "first")
		return nil
	}
	second := func(*cobra.Command, []string) error {
		order = append(order, "second")
		return nil
	}

	chained := chainPersistentPreRun(first, second)
	if err := chained(nil, nil); err != nil {
		t.Fatalf("chained: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected first then second, got %v", order)
	}
}

func TestChainPersistentPreRun_NilExistingReturnsNextDirectly(t *testing.T) {
	next := func(*cobra.Command, []string) error { return nil }
	if got := chainPersistentPreRun(nil, next); got == nil {
		t.Errorf("expected non-nil chained function")
	}
}
