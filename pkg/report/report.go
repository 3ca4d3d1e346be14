// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package report defines the self-describing benchmark report: the
// unit of persistence and the unit of comparison.
//
// A report must be interpretable without the suite configuration that
// produced it, so it carries the backend identity, the case, the
// environment blob, and the literal CLI arguments alongside the
// metrics. Reports are immutable once serialized; new optional fields
// may be added over time and older readers ignore them.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zkbench/zkbench/pkg/metrics"
)

// SchemaVersion is bumped only for incompatible shape changes.
const SchemaVersion = 1

// BackendInfo identifies the tool a report was produced with.
type BackendInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewBackendInfo records a backend identity. Version discovery is
// best-effort; an empty version becomes "unknown", never an error.
func NewBackendInfo(name, version string) BackendInfo {
	if version == "" {
		version = "unknown"
	}
	return BackendInfo{Name: name, Version: version}
}

// CaseInfo identifies the benchmark case a report measured.
type CaseInfo struct {
	Label    string `json:"label,omitempty"`
	Artifact string `json:"artifact"`
	Inputs   string `json:"inputs,omitempty"`
}

// Name returns the human-readable case name: the label when present,
// otherwise the artifact file stem.
func (c CaseInfo) Name() string {
	if c.Label != "" {
		return c.Label
	}
	base := filepath.Base(c.Artifact)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Meta carries invocation context.
type Meta struct {
	CLIArgs []string `json:"cli_args"`
}

// Failure is the structured record of a run that did not complete.
// Suite sinks write failures instead of omitting records, so a suite's
// record count always equals its planned run count.
type Failure struct {
	// Stage classifies the error: config, spawn, timeout, execution,
	// or parse.
	Stage string `json:"stage"`

	// Error is the rendered error message.
	Error string `json:"error"`

	// Stderr preserves the tool's stderr for diagnosis, when any.
	Stderr string `json:"stderr,omitempty"`
}

// Report is one self-contained benchmark result.
type Report struct {
	SchemaVersion int               `json:"schema_version"`
	RecordID      string            `json:"record_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Name          string            `json:"name"`
	Case          CaseInfo          `json:"case"`
	Metrics       metrics.Set       `json:"metrics"`
	Iterations    *Iterations       `json:"iterations,omitempty"`
	System        map[string]string `json:"system"`
	Backend       BackendInfo       `json:"backend"`
	Meta          Meta              `json:"meta"`
	Failure       *Failure          `json:"failure,omitempty"`
}

// New creates an empty report for the named operation with a fresh
// record id and timestamp.
func New(name string) *Report {
	return &Report{
		SchemaVersion: SchemaVersion,
		RecordID:      uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Name:          name,
		Metrics:       metrics.Set{},
		System:        map[string]string{},
	}
}

// Failed reports whether this record describes a failed run.
func (r *Report) Failed() bool {
	return r.Failure != nil
}

// Write serializes the report as JSON to the given path, creating
// parent directories as needed.
func (r *Report) Write(path string, pretty bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("serialize report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o640)
}

// Load reads a single JSON report from disk. Unknown fields are
// ignored for forward compatibility.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}
