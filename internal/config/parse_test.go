package config

import (
	"testing"
	"time"
)

func TestParseBool(t *testing.T) {
	cases := map[string]bool{"1": true, "true": true, "yes": true, "on": true, "0": false, "false": false, "off": false}
	for in, want := range cases {
		got, err := parseBool(in)
		if err != nil {
			t.Fatalf("parseBool(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseBool(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseBool("maybe"); err == nil {
		t.Errorf("expected an error for an unrecognized bool string")
	}
}

func TestParseDuration_AcceptsGoDurationSyntax(t *testing.T) {
	d, err := parseDuration("10s")
	if err != nil || d != 10*time.Second {
		t.Fatalf("parseDuration(10s) = %v, %v", d, err)
	}
}

func TestParseDuration_AcceptsBareSecondsAsFallback(t *testing.T) {
	d, err := parseDuration("30")
	if err != nil || d != 30*time.Second {
		t.Fatalf("parseDuration(30) = %v, %v", d, err)
	}
}

func TestParseDuration_EmptyStringIsZero(t *testing.T) {
	d, err := parseDuration("")
	if err != nil || d != 0 {
		t.Fatalf("parseDuration(\"\") = %v, %v", d, err)
	}
}

func TestParseDuration_RejectsGarbage(t *testing.T) {
	if _, err := parseDuration("not-a-duration"); err == nil {
		t.Errorf("expected an error for an unparseable duration")
	}
}

func TestParseIntSlice(t *testing.T) {
	got, err := parseIntSlice("1883, 8883 ,1884")
	if err != nil {
		t.Fatalf("parseIntSlice: %v", err)
	}
	want := []int{1883, 8883, 1884}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParseIntSlice_EmptyStringReturnsEmptySlice(t *testing.T) {
	got, err := parseIntSlice("")
	if err != nil {
		t.Fatalf("parseIntSlice(\"\"): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected an empty slice, got %v", got)
	}
}

func TestParseIntSlice_RejectsNonIntegerElement(t *testing.T) {
	if _, err := parseIntSlice("1883,abc"); err == nil {
		t.Errorf("expected an error for a non-integer element")
	}
}
