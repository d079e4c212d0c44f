package config

import (
	"testing"

	"github.com/tabctl/tabctl/internal/value"
)

func TestNewDefaultsNumericFormat(t *testing.T) {
	rc := New("tabctl", "", value.PolicyStringsFloatsInts)
	if rc.NumericFormat != "%v" {
		t.Fatalf("NumericFormat = %q, want %%v", rc.NumericFormat)
	}
	if rc.ProgName != "tabctl" {
		t.Fatalf("ProgName = %q", rc.ProgName)
	}
}

func TestKeyColumnDefaultFallback(t *testing.T) {
	rc := &RunContext{Env: map[string]string{}}
	if got := rc.KeyColumnDefault("key"); got != "key" {
		t.Fatalf("got %q, want fallback", got)
	}
	rc.Env["MLR_KEY_COLUMN_DEFAULT"] = "k"
	if got := rc.KeyColumnDefault("key"); got != "k" {
		t.Fatalf("got %q, want env override", got)
	}
}

func TestValueColumnDefaultFallback(t *testing.T) {
	rc := &RunContext{Env: map[string]string{"MLR_VALUE_COLUMN_DEFAULT": "v"}}
	if got := rc.ValueColumnDefault("value"); got != "v" {
		t.Fatalf("got %q, want env override", got)
	}
}
