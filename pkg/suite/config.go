// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package suite

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BackendConfig names one backend of the suite matrix.
type BackendConfig struct {
	Name      string   `yaml:"name"`
	Path      string   `yaml:"path"`
	Template  string   `yaml:"template"`
	ExtraArgs []string `yaml:"extra_args"`
}

// Label returns the backend's display name.
func (b BackendConfig) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return "generic"
}

// CaseConfig names one benchmark case of the suite matrix.
type CaseConfig struct {
	Label     string   `yaml:"label"`
	Artifact  string   `yaml:"artifact" validate:"required"`
	Inputs    string   `yaml:"inputs"`
	Proof     string   `yaml:"proof"`
	ExtraArgs []string `yaml:"extra_args"`
}

// InfluxConfig mirrors successful reports to an InfluxDB 2.x bucket
// alongside the JSONL sink. All four fields are required when the
// block is present.
type InfluxConfig struct {
	URL    string `yaml:"url" validate:"required"`
	Token  string `yaml:"token" validate:"required"`
	Org    string `yaml:"org" validate:"required"`
	Bucket string `yaml:"bucket" validate:"required"`
}

// Config is the declarative suite description.
type Config struct {
	Name string `yaml:"name"`

	// Sink is the JSONL output path. One record is appended per
	// planned run, failures included.
	Sink string `yaml:"sink" validate:"required"`

	// Influx optionally publishes each successful run's metrics as
	// time-series points. Failure records stay JSONL-only.
	Influx *InfluxConfig `yaml:"influx"`

	Iterations int `yaml:"iterations" validate:"gte=0"`
	Warmup     int `yaml:"warmup" validate:"gte=0"`

	// Timeout bounds each spawned process, as a Go duration string.
	Timeout string `yaml:"timeout"`

	// AbortOnFailure stops the suite at the first failed run instead
	// of the default best-effort breadth.
	AbortOnFailure bool `yaml:"abort_on_failure"`

	// Parallel bounds concurrent runs. Zero or one means sequential.
	Parallel int `yaml:"parallel" validate:"gte=0"`

	Operations []string        `yaml:"operations" validate:"required,min=1"`
	Backends   []BackendConfig `yaml:"backends" validate:"required,min=1,dive"`
	Cases      []CaseConfig    `yaml:"cases" validate:"required,min=1,dive"`

	timeout time.Duration
}

// ProcessTimeout returns the parsed per-process timeout, zero when
// unset.
func (c *Config) ProcessTimeout() time.Duration { return c.timeout }

// LoadConfig reads and structurally validates a suite file. Unknown
// keys are rejected so a typo cannot silently disable a setting.
// Semantic validation (artifacts exist, backends resolve) happens in
// Runner.plan, still before anything executes.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConfig, path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finish applies defaults and runs struct validation.
func (c *Config) finish() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: bad timeout %q", ErrConfig, c.Timeout)
		}
		c.timeout = d
	}
	return nil
}
