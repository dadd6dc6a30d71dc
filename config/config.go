// Package config holds the engine's tunable knobs (§6), loadable from a
// YAML file via gopkg.in/yaml.v3 the way the teacher loads its own
// world-level settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options enumerates the configuration knobs the spec names, with their
// stated defaults.
type Options struct {
	MaxExecutionTimeMs   int      `yaml:"max_execution_time_ms"`
	MaxCallDepth         int      `yaml:"max_call_depth"`
	WarningsAsErrors     bool     `yaml:"warnings_as_errors"`
	FilteredWarningCodes []string `yaml:"filtered_warning_codes"`
}

// Default returns the spec's stated default configuration.
func Default() Options {
	return Options{
		MaxExecutionTimeMs: 5000,
		MaxCallDepth:       32,
		WarningsAsErrors:   true,
		FilteredWarningCodes: []string{
			"nullable-assignment",
			"nullable-member-access",
		},
	}
}

// ExecutionTimeout returns MaxExecutionTimeMs as a time.Duration.
func (o Options) ExecutionTimeout() time.Duration {
	return time.Duration(o.MaxExecutionTimeMs) * time.Millisecond
}

// FilteredWarningCodeSet returns FilteredWarningCodes as a lookup set.
func (o Options) FilteredWarningCodeSet() map[string]bool {
	out := make(map[string]bool, len(o.FilteredWarningCodes))
	for _, code := range o.FilteredWarningCodes {
		out[code] = true
	}
	return out
}

// Load reads Options from a YAML file, starting from Default() so a
// partial file only overrides the fields it sets.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	return opts, nil
}
