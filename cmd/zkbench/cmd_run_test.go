// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkbench/zkbench/pkg/backend"
	"github.com/zkbench/zkbench/pkg/logging"
	"github.com/zkbench/zkbench/pkg/report"
)

// resetBenchFlags puts the shared flag variables into a known state
// for direct calls to the command bodies.
func resetBenchFlags() {
	backendName = "mock"
	backendPath = ""
	template = ""
	label = ""
	inputsPath = ""
	proofPath = ""
	iterations = 1
	warmup = 0
	timeoutStr = ""
	wrapCmd = ""
	jsonOut = ""
	quiet = true
	log = logging.Default()
}

func TestBenchOperationWritesReport(t *testing.T) {
	resetBenchFlags()
	jsonOut = filepath.Join(t.TempDir(), "report.json")

	code := benchOperation(context.Background(), backend.OpProve, []string{"program.json"})
	require.Equal(t, CLIExitSuccess, code)

	rep, err := report.Load(jsonOut)
	require.NoError(t, err)
	assert.Equal(t, "prove", rep.Name)
	assert.Equal(t, "mock", rep.Backend.Name)
	assert.Contains(t, rep.Metrics, "prove_time_ms")
}

func TestBenchOperationUnknownBackend(t *testing.T) {
	resetBenchFlags()
	backendName = "snarkjs"
	code := benchOperation(context.Background(), backend.OpGates, []string{"program.json"})
	assert.Equal(t, CLIExitError, code)
}

func TestBenchOperationBadTimeout(t *testing.T) {
	resetBenchFlags()
	timeoutStr = "soon"
	code := benchOperation(context.Background(), backend.OpGates, []string{"program.json"})
	assert.Equal(t, CLIExitError, code)
}

func TestVerifyRejectionExitsFindings(t *testing.T) {
	resetBenchFlags()
	// The generic template runs a command that always exits non-zero,
	// which for verify is the rejection verdict.
	backendName = "rejecting"
	template = "false {proof}"
	proofPath = "proof"

	code := benchOperation(context.Background(), backend.OpVerify, []string{"program.json"})
	assert.Equal(t, CLIExitFindings, code)
}

func TestSplitWrap(t *testing.T) {
	assert.Nil(t, splitWrap(""))
	assert.Nil(t, splitWrap("   "))
	assert.Equal(t, []string{"flamegraph", "--"}, splitWrap("flamegraph --"))
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = parseTimeout("-5s")
	assert.Error(t, err)
}
