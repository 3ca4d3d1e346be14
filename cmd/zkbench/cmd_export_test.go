// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/report"
	"github.com/zkbench/zkbench/pkg/storage"
)

func TestExecuteExportCSV(t *testing.T) {
	resetBenchFlags()
	dir := t.TempDir()
	recordsPath := filepath.Join(dir, "records.jsonl")

	sink, err := storage.OpenJSONL(recordsPath)
	require.NoError(t, err)
	rep := report.New("gates")
	rep.Case = report.CaseInfo{Label: "poseidon"}
	rep.Backend = report.NewBackendInfo("mock", "1.0")
	rep.Metrics = metrics.Set{"gates_total": metrics.Int(1000)}
	require.NoError(t, sink.Append(rep))
	require.NoError(t, sink.Close())

	csvOut = filepath.Join(dir, "bench.csv")
	code := executeExportCSV(recordsPath)
	require.Equal(t, CLIExitSuccess, code)

	data, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "gates_total")
	assert.Contains(t, lines[1], "poseidon")
	assert.Contains(t, lines[1], "1000")
}

func TestExecuteExportCSVMissingInput(t *testing.T) {
	resetBenchFlags()
	csvOut = ""
	code := executeExportCSV(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Equal(t, CLIExitError, code)
}
