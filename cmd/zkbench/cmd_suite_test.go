// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkbench/zkbench/pkg/storage"
)

func TestExecuteSuite(t *testing.T) {
	resetBenchFlags()
	dir := t.TempDir()
	artifact := filepath.Join(dir, "program.json")
	require.NoError(t, os.WriteFile(artifact, []byte("{}"), 0o640))
	sink := filepath.Join(dir, "out.jsonl")
	config := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
sink: `+sink+`
operations: [gates, prove]
backends:
  - name: mock
cases:
  - artifact: `+artifact+`
`), 0o640))

	code := executeSuite(context.Background(), config)
	assert.Equal(t, CLIExitSuccess, code)

	records, err := storage.ReadJSONL(sink)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestExecuteSuiteConfigError(t *testing.T) {
	resetBenchFlags()
	assert.Equal(t, CLIExitError,
		executeSuite(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")))
}
