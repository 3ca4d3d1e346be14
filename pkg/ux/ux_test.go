// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zkbench/zkbench/pkg/compare"
	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/report"
	"github.com/zkbench/zkbench/pkg/suite"
)

func TestComparisonPlainOutput(t *testing.T) {
	base := report.New("prove")
	base.Case = report.CaseInfo{Artifact: "poseidon.json"}
	base.Metrics = metrics.Set{"prove_time_ms": metrics.Float(100)}
	cont := report.New("prove")
	cont.Case = base.Case
	cont.Metrics = metrics.Set{
		"prove_time_ms":    metrics.Float(150),
		"proof_size_bytes": metrics.Bytes(4096),
	}

	res := compare.Reports(base, cont, compare.Options{ThresholdPct: 5})
	var sb strings.Builder
	NewRenderer(&sb, false).Comparison(res)
	out := sb.String()

	assert.Contains(t, out, "poseidon / prove")
	assert.Contains(t, out, "prove_time_ms")
	assert.Contains(t, out, "+50.00% regressed")
	assert.Contains(t, out, "unavailable for comparison")
	assert.Contains(t, out, "REGRESSED")
	// Plain mode carries no escape sequences.
	assert.NotContains(t, out, "\x1b[")
}

func TestSummaryOutput(t *testing.T) {
	s := &suite.Summary{
		Planned:      6,
		Succeeded:    5,
		Failed:       1,
		PerBackend:   map[string]suite.Counts{"mock": {Succeeded: 5, Failed: 1}},
		PerOperation: map[string]suite.Counts{"gates": {Succeeded: 5, Failed: 1}},
		Results: []suite.RunResult{
			{Case: "poseidon", Backend: "mock", Operation: "gates", Err: errors.New("boom")},
		},
	}

	var sb strings.Builder
	NewRenderer(&sb, false).Summary(s)
	out := sb.String()
	assert.Contains(t, out, "6 planned, 5 succeeded, 1 failed")
	assert.Contains(t, out, "backend mock")
	assert.Contains(t, out, "FAIL poseidon/mock/gates: boom")
}
