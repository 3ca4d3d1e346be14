// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package suite

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkbench/zkbench/pkg/storage"
)

func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(`{"bytecode":""}`), 0o640))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: nightly
sink: out/results.jsonl
iterations: 3
warmup: 1
timeout: 90s
operations: [gates, prove]
backends:
  - name: mock
cases:
  - artifact: program.json
    label: poseidon
`), 0o640))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.Name)
	assert.Equal(t, 3, cfg.Iterations)
	assert.Equal(t, 90*time.Second, cfg.ProcessTimeout())
	assert.Equal(t, []string{"gates", "prove"}, cfg.Operations)
	assert.Equal(t, "poseidon", cfg.Cases[0].Label)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sink: out.jsonl
operations: [gates]
bakends:
  - name: mock
cases:
  - artifact: program.json
`), 0o640))
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadConfigRequiresFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sink: out.jsonl
operations: [gates]
backends:
  - name: mock
cases: []
`), 0o640))
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadConfigBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sink: out.jsonl
timeout: ninety
operations: [gates]
backends:
  - name: mock
cases:
  - artifact: program.json
`), 0o640))
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestExecuteRecordPerPlannedRun(t *testing.T) {
	dir := t.TempDir()
	sink := filepath.Join(dir, "out.jsonl")
	cfg := &Config{
		Sink:       sink,
		Operations: []string{"gates"},
		Backends: []BackendConfig{
			{Name: "mock"},
			// Always exits non-zero, so every run of it fails.
			{Name: "broken", Template: "false {artifact}"},
		},
		Cases: []CaseConfig{
			{Artifact: writeArtifact(t, dir, "a.json")},
			{Artifact: writeArtifact(t, dir, "b.json")},
			{Artifact: writeArtifact(t, dir, "c.json")},
		},
	}

	summary, err := NewRunner(cfg).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Planned)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, Counts{Succeeded: 3}, summary.PerBackend["mock"])
	assert.Equal(t, Counts{Failed: 3}, summary.PerBackend["broken"])
	assert.Equal(t, Counts{Succeeded: 3, Failed: 3}, summary.PerOperation["gates"])

	records, err := storage.ReadJSONL(sink)
	require.NoError(t, err)
	require.Len(t, records, 6)
	failures := 0
	for _, r := range records {
		if r.Failed() {
			failures++
			assert.Equal(t, "execution", r.Failure.Stage)
		}
	}
	assert.Equal(t, 3, failures)
}

func TestLoadConfigInflux(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sink: out.jsonl
influx:
  url: http://localhost:8086
  token: secret
  org: zk
  bucket: bench
operations: [gates]
backends:
  - name: mock
cases:
  - artifact: program.json
`), 0o640))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Influx)
	assert.Equal(t, "bench", cfg.Influx.Bucket)
}

func TestLoadConfigInfluxIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sink: out.jsonl
influx:
  url: http://localhost:8086
operations: [gates]
backends:
  - name: mock
cases:
  - artifact: program.json
`), 0o640))
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestExecutePublishesToInflux(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dir := t.TempDir()
	sink := filepath.Join(dir, "out.jsonl")
	cfg := &Config{
		Sink:       sink,
		Influx:     &InfluxConfig{URL: srv.URL, Token: "secret", Org: "zk", Bucket: "bench"},
		Operations: []string{"gates"},
		Backends:   []BackendConfig{{Name: "mock"}},
		Cases:      []CaseConfig{{Artifact: writeArtifact(t, dir, "a.json"), Label: "poseidon"}},
	}

	summary, err := NewRunner(cfg).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, bodies)
	lines := strings.Join(bodies, "\n")
	assert.Contains(t, lines, "zkbench,")
	assert.Contains(t, lines, "case=poseidon")
	assert.Contains(t, lines, "gates_total")
}

func TestExecuteInfluxDownIsBestEffort(t *testing.T) {
	dir := t.TempDir()
	sink := filepath.Join(dir, "out.jsonl")
	cfg := &Config{
		Sink: sink,
		// Nothing listens here; publishing fails but the suite and
		// its JSONL records must be unaffected.
		Influx:     &InfluxConfig{URL: "http://127.0.0.1:1", Token: "secret", Org: "zk", Bucket: "bench"},
		Operations: []string{"gates"},
		Backends:   []BackendConfig{{Name: "mock"}},
		Cases:      []CaseConfig{{Artifact: writeArtifact(t, dir, "a.json")}},
	}

	summary, err := NewRunner(cfg).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	records, err := storage.ReadJSONL(sink)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExecuteAbortOnFailure(t *testing.T) {
	dir := t.TempDir()
	sink := filepath.Join(dir, "out.jsonl")
	cfg := &Config{
		Sink:           sink,
		AbortOnFailure: true,
		Operations:     []string{"gates"},
		Backends:       []BackendConfig{{Name: "broken", Template: "false {artifact}"}},
		Cases: []CaseConfig{
			{Artifact: writeArtifact(t, dir, "a.json")},
			{Artifact: writeArtifact(t, dir, "b.json")},
		},
	}

	summary, err := NewRunner(cfg).Execute(context.Background())
	require.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 1, summary.Failed)

	records, readErr := storage.ReadJSONL(sink)
	require.NoError(t, readErr)
	assert.Len(t, records, 1)
}

func TestExecuteParallel(t *testing.T) {
	dir := t.TempDir()
	sink := filepath.Join(dir, "out.jsonl")
	cfg := &Config{
		Sink:       sink,
		Parallel:   4,
		Operations: []string{"gates", "prove"},
		Backends:   []BackendConfig{{Name: "mock"}},
		Cases: []CaseConfig{
			{Artifact: writeArtifact(t, dir, "a.json")},
			{Artifact: writeArtifact(t, dir, "b.json")},
		},
	}

	summary, err := NewRunner(cfg).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Planned)
	assert.Equal(t, 4, summary.Succeeded)

	records, err := storage.ReadJSONL(sink)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestConfigErrorAbortsBeforeExecution(t *testing.T) {
	dir := t.TempDir()
	sink := filepath.Join(dir, "out.jsonl")

	t.Run("missing artifact", func(t *testing.T) {
		cfg := &Config{
			Sink:       sink,
			Operations: []string{"gates"},
			Backends:   []BackendConfig{{Name: "mock"}},
			Cases:      []CaseConfig{{Artifact: filepath.Join(dir, "missing.json")}},
		}
		_, err := NewRunner(cfg).Execute(context.Background())
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("unknown operation", func(t *testing.T) {
		cfg := &Config{
			Sink:       sink,
			Operations: []string{"fold"},
			Backends:   []BackendConfig{{Name: "mock"}},
			Cases:      []CaseConfig{{Artifact: writeArtifact(t, dir, "a.json")}},
		}
		_, err := NewRunner(cfg).Execute(context.Background())
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("template missing placeholder", func(t *testing.T) {
		cfg := &Config{
			Sink:       sink,
			Operations: []string{"gates"},
			Backends:   []BackendConfig{{Name: "bad", Template: "true --no-placeholders"}},
			Cases:      []CaseConfig{{Artifact: writeArtifact(t, dir, "b.json")}},
		}
		_, err := NewRunner(cfg).Execute(context.Background())
		require.ErrorIs(t, err, ErrConfig)
	})

	// No sink file appears for a configuration error.
	assert.NoFileExists(t, sink)
}
