// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/report"
)

func observation(op string, at time.Time, set metrics.Set) *report.Report {
	r := report.New(op)
	r.Timestamp = at
	r.Case = report.CaseInfo{Artifact: "poseidon.json"}
	r.Backend = report.NewBackendInfo("bb", "0.84.0")
	r.Metrics = set
	return r
}

func TestTrendsGroupAndOrder(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reports := []*report.Report{
		// Out of chronological order on purpose.
		observation("prove", base.Add(48*time.Hour), metrics.Set{"prove_time_ms": metrics.Float(120)}),
		observation("prove", base, metrics.Set{"prove_time_ms": metrics.Float(100)}),
		observation("gates", base, metrics.Set{"gates_time_ms": metrics.Float(5), "gates_total": metrics.Int(1000)}),
	}

	trends := Trends(reports, "")
	require.Len(t, trends, 2)

	prove := trends[1]
	assert.Equal(t, "prove", prove.Operation)
	require.Len(t, prove.Points, 2)
	assert.Equal(t, 100.0, prove.Points[0].Value)
	assert.Equal(t, 120.0, prove.Points[1].Value)
	assert.InDelta(t, 20.0, prove.DeltaPct, 1e-9)

	gates := trends[0]
	assert.Equal(t, "gates_time_ms", gates.Metric)
	assert.Zero(t, gates.DeltaPct)
}

func TestTrendsExplicitMetric(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reports := []*report.Report{
		observation("gates", base, metrics.Set{"gates_total": metrics.Int(1000)}),
		observation("gates", base.Add(time.Hour), metrics.Set{"gates_total": metrics.Int(900)}),
	}
	trends := Trends(reports, "gates_total")
	require.Len(t, trends, 1)
	assert.InDelta(t, -10.0, trends[0].DeltaPct, 1e-9)
}

func TestTrendsSkipFailuresAndAbsent(t *testing.T) {
	failed := observation("prove", time.Now(), metrics.Set{"prove_time_ms": metrics.Float(1)})
	failed.Failure = &report.Failure{Stage: "timeout", Error: "deadline"}
	noMetric := observation("prove", time.Now(), metrics.Set{})

	assert.Empty(t, Trends([]*report.Report{failed, noMetric}, ""))
}

func TestRenderHTML(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	trends := Trends([]*report.Report{
		observation("prove", base, metrics.Set{"prove_time_ms": metrics.Float(100)}),
		observation("prove", base.Add(time.Hour), metrics.Set{"prove_time_ms": metrics.Float(130)}),
	}, "")

	var sb strings.Builder
	require.NoError(t, RenderHTML(&sb, "nightly history", trends))
	html := sb.String()
	assert.Contains(t, html, "nightly history")
	assert.Contains(t, html, "prove_time_ms")
	assert.Contains(t, html, "+30.00%")
}
