// Package config carries the run's immutable, CLI-derived context: program
// name, numeric output format, type-inferencing policy, and the environment
// variables read at startup.
//
// spec.md §9's design note is explicit that this is not global state: "it is
// threaded as an immutable context object from the top-level driver into
// transformers and the DSL runtime." funxy's own internal/config package
// goes the other way — Version, IsTestMode, IsLSPMode are package-level
// mutable globals, set once in main() and read everywhere (cmd/funxy/main.go
// sets config.IsTestMode directly). That works for a single-process CLI
// with one entry point, but this spec explicitly rejects it for the same
// program-name/OFMT data, so RunContext is a plain struct built once in
// cmd/tabctl and passed down, never package-level state.
package config

import (
	"os"

	"github.com/tabctl/tabctl/internal/value"
)

// RunContext is the immutable context threaded from the CLI entry point
// into every verb's transformer.
type RunContext struct {
	// ProgName is argv[0]'s base name, used in usage banners and fatal
	// diagnostics (spec.md §6: "Exit non-zero ... printing a usage banner").
	ProgName string

	// NumericFormat is the OFMT value controlling how Float values are
	// rendered on output and overlay flush (spec.md §4.2, §6).
	NumericFormat string

	// Policy is the type-inferencing policy applied when parsing record
	// field strings into typed Values (spec.md §3).
	Policy value.Policy

	// Env is a snapshot of the process environment at startup (spec.md §6:
	// "read at startup"). DSL `ENV["VAR"] = expr` assignments do not touch
	// this snapshot: they write the process environment and the live env map
	// owned by internal/transformer's DSLTransformer, which starts empty. DSL
	// ENV reads consult that map first, then the process environment.
	Env map[string]string
}

// New builds a RunContext from the process environment and explicit CLI
// values. numericFormat defaults to "%v" (Go's default float formatting)
// when unset, mirroring funxy's treatment of unset build-time string vars
// as usable zero values rather than requiring a non-empty check everywhere
// downstream.
func New(progName string, numericFormat string, policy value.Policy) *RunContext {
	if numericFormat == "" {
		numericFormat = "%v"
	}
	return &RunContext{
		ProgName:      progName,
		NumericFormat: numericFormat,
		Policy:        policy,
		Env:           snapshotEnv(),
	}
}

func snapshotEnv() map[string]string {
	env := make(map[string]string, len(os.Environ()))
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return env
}

// envKeyColumnDefault and envValueColumnDefault name the two startup
// environment variables spec.md §6 names for default key/value column
// names in verbs that need one and none is given on the command line;
// envOFMT names the numeric output format variable.
const (
	envKeyColumnDefault   = "MLR_KEY_COLUMN_DEFAULT"
	envValueColumnDefault = "MLR_VALUE_COLUMN_DEFAULT"
	envOFMT               = "OFMT"
)

// KeyColumnDefault returns MLR_KEY_COLUMN_DEFAULT from the snapshotted
// environment, or fallback if unset.
func (rc *RunContext) KeyColumnDefault(fallback string) string {
	if v, ok := rc.Env[envKeyColumnDefault]; ok && v != "" {
		return v
	}
	return fallback
}

// ValueColumnDefault returns MLR_VALUE_COLUMN_DEFAULT from the snapshotted
// environment, or fallback if unset.
func (rc *RunContext) ValueColumnDefault(fallback string) string {
	if v, ok := rc.Env[envValueColumnDefault]; ok && v != "" {
		return v
	}
	return fallback
}

// OFMTFromEnv returns the OFMT environment variable, or "" if unset —
// callers combine this with an explicit --ofmt flag (flag wins) before calling
// New, per spec.md §6 "OFMT (numeric output format) — read at startup".
func OFMTFromEnv() string {
	return os.Getenv(envOFMT)
}
