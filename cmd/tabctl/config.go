package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDefaults are the optional startup defaults spec.md §6's environment
// section gets supplemented with (SPEC_FULL.md §6.5): OFMT, the two
// MLR_*_COLUMN_DEFAULT names, and the step verb's default decay alpha list.
// Only OFMT is applied, with precedence --ofmt flag > OFMT environment
// variable > this file > built-in default; the other three fields are
// parsed but not used.
//
// Grounded on funxy's internal/ext.LoadConfig/ParseConfig (funxy.yaml):
// read-whole-file-then-yaml.Unmarshal, no partial/streaming parse needed
// for a handful of scalar defaults.
type fileDefaults struct {
	OFMT                 string   `yaml:"ofmt,omitempty"`
	KeyColumnDefault     string   `yaml:"key_column_default,omitempty"`
	ValueColumnDefault   string   `yaml:"value_column_default,omitempty"`
	DefaultDecayAlphas   []string `yaml:"default_decay_alphas,omitempty"`
}

// loadFileDefaults reads tabctl.yaml from path, returning a zero-value
// fileDefaults (not an error) if the file does not exist — the config file
// is optional, unlike funxy.yaml's project-local discovery requirement.
func loadFileDefaults(path string) (fileDefaults, error) {
	var cfg fileDefaults
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
