// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package history folds an accumulated record stream into per-case
// metric trends, for watching a circuit's cost drift across runs.
package history

import (
	"sort"
	"time"

	"github.com/zkbench/zkbench/pkg/report"
)

// Point is one observation of a tracked metric.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	RecordID  string    `json:"record_id"`
	Value     float64   `json:"value"`
}

// Trend is the time-ordered series of one metric for one
// case/backend/operation combination.
type Trend struct {
	Case      string  `json:"case"`
	Backend   string  `json:"backend"`
	Operation string  `json:"operation"`
	Metric    string  `json:"metric"`
	Points    []Point `json:"points"`

	// DeltaPct is the drift from the first to the latest observation,
	// in percent. Zero when the series has one point or starts at
	// zero.
	DeltaPct float64 `json:"delta_pct"`
}

// trendKey groups records that belong to the same series.
type trendKey struct {
	c, b, op string
}

// Trends folds reports into per-combination series of the named
// metric. An empty metric name tracks each operation's own wall-clock
// metric (gates_time_ms for gates, and so on). Failed records and
// records without the metric contribute nothing; a series with no
// points is omitted.
func Trends(reports []*report.Report, metric string) []Trend {
	groups := map[trendKey]*Trend{}
	for _, r := range reports {
		if r.Failed() {
			continue
		}
		name := metric
		if name == "" {
			name = r.Name + "_time_ms"
		}
		v, present := r.Metrics[name]
		if !present {
			continue
		}
		n, numeric := v.Num()
		if !numeric {
			continue
		}

		key := trendKey{c: r.Case.Name(), b: r.Backend.Name, op: r.Name}
		t, seen := groups[key]
		if !seen {
			t = &Trend{Case: key.c, Backend: key.b, Operation: key.op, Metric: name}
			groups[key] = t
		}
		t.Points = append(t.Points, Point{
			Timestamp: r.Timestamp,
			RecordID:  r.RecordID,
			Value:     n,
		})
	}

	out := make([]Trend, 0, len(groups))
	for _, t := range groups {
		sort.Slice(t.Points, func(i, j int) bool {
			return t.Points[i].Timestamp.Before(t.Points[j].Timestamp)
		})
		if first := t.Points[0].Value; first != 0 && len(t.Points) > 1 {
			last := t.Points[len(t.Points)-1].Value
			t.DeltaPct = (last - first) / first * 100
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Case != b.Case {
			return a.Case < b.Case
		}
		if a.Backend != b.Backend {
			return a.Backend < b.Backend
		}
		return a.Operation < b.Operation
	})
	return out
}
