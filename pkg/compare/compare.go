// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package compare computes per-metric deltas between two benchmark
// reports and classifies regressions against a percentage threshold.
//
// Comparison never mutates either input report. Metrics present in
// only one report are reported as unavailable, never as a zero-vs-value
// delta, because absence of a metric means it was not measured.
package compare

import (
	"sort"
	"strings"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/report"
)

// DefaultThresholdPct is the regression threshold used when the caller
// does not configure one.
const DefaultThresholdPct = 2.0

// Status classifies one metric's movement between two reports.
type Status string

const (
	// StatusUnchanged: within threshold, or equal.
	StatusUnchanged Status = "unchanged"

	// StatusImproved: moved in the better direction beyond threshold.
	StatusImproved Status = "improved"

	// StatusRegressed: moved in the worse direction beyond threshold,
	// or a verdict flipped from passing to failing.
	StatusRegressed Status = "regressed"

	// StatusChanged: differs, but the metric has no better/worse
	// direction, so it never counts toward the verdict.
	StatusChanged Status = "changed"

	// StatusUnavailable: present in only one of the two reports.
	StatusUnavailable Status = "unavailable"
)

// Delta is one metric's comparison row.
type Delta struct {
	Name      string         `json:"name"`
	Baseline  *metrics.Value `json:"baseline,omitempty"`
	Contender *metrics.Value `json:"contender,omitempty"`

	// DeltaPct is (contender - baseline) / baseline * 100, present
	// only when both sides are numeric and the baseline is non-zero.
	DeltaPct *float64 `json:"delta_pct,omitempty"`

	Status Status `json:"status"`
}

// Result is the full comparison of two reports.
type Result struct {
	BaselineID   string  `json:"baseline_id"`
	ContenderID  string  `json:"contender_id"`
	Name         string  `json:"name"`
	Case         string  `json:"case"`
	ThresholdPct float64 `json:"threshold_pct"`
	Deltas       []Delta `json:"metrics"`
	Regressed    bool    `json:"regressed"`
}

// Options configure comparison.
type Options struct {
	// ThresholdPct is the minimum worsening, in percent, that counts
	// as a regression. Zero means DefaultThresholdPct.
	ThresholdPct float64
}

// lowerBetterNames are directional metrics without a directional
// suffix.
var lowerBetterNames = map[string]bool{
	"gates_total":   true,
	"acir_opcodes":  true,
	"circuit_size":  true,
	"subgroup_size": true,
	"gas_used":      true,
}

// lowerIsBetter reports whether a higher value of the named metric is
// worse. Time, size, and gate-count metrics all shrink when things
// improve; anything else is treated as directionless.
func lowerIsBetter(name string) bool {
	for _, suffix := range []string{"_ms", "_bytes", "_gates", "_mb"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return lowerBetterNames[name]
}

// Reports compares a contender report against a baseline.
func Reports(baseline, contender *report.Report, opts Options) *Result {
	threshold := opts.ThresholdPct
	if threshold == 0 {
		threshold = DefaultThresholdPct
	}

	names := map[string]bool{}
	for name := range baseline.Metrics {
		names[name] = true
	}
	for name := range contender.Metrics {
		names[name] = true
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	res := &Result{
		BaselineID:   baseline.RecordID,
		ContenderID:  contender.RecordID,
		Name:         contender.Name,
		Case:         contender.Case.Name(),
		ThresholdPct: threshold,
	}
	for _, name := range ordered {
		d := compareMetric(name, baseline.Metrics, contender.Metrics, threshold)
		if d.Status == StatusRegressed {
			res.Regressed = true
		}
		res.Deltas = append(res.Deltas, d)
	}
	return res
}

func compareMetric(name string, base, cont metrics.Set, threshold float64) Delta {
	b, haveBase := base[name]
	c, haveCont := cont[name]

	d := Delta{Name: name}
	if haveBase {
		d.Baseline = &b
	}
	if haveCont {
		d.Contender = &c
	}
	if !haveBase || !haveCont {
		d.Status = StatusUnavailable
		return d
	}

	switch {
	case b.Kind() == metrics.KindBool && c.Kind() == metrics.KindBool:
		// A verdict flip to false is a regression regardless of any
		// threshold; a flip to true is an improvement.
		bb, _ := b.Bool()
		cb, _ := c.Bool()
		switch {
		case bb == cb:
			d.Status = StatusUnchanged
		case bb && !cb:
			d.Status = StatusRegressed
		default:
			d.Status = StatusImproved
		}
	case numeric(b) && numeric(c):
		bn, _ := b.Num()
		cn, _ := c.Num()
		d.Status = numericStatus(&d, name, bn, cn, threshold)
	default:
		if b.String() == c.String() {
			d.Status = StatusUnchanged
		} else {
			d.Status = StatusChanged
		}
	}
	return d
}

func numericStatus(d *Delta, name string, b, c, threshold float64) Status {
	if b == 0 {
		if c == 0 {
			pct := 0.0
			d.DeltaPct = &pct
			return StatusUnchanged
		}
		// No percentage from a zero baseline; movement away from zero
		// on a directional metric is still a worsening.
		if lowerIsBetter(name) && c > 0 {
			return StatusRegressed
		}
		return StatusChanged
	}

	pct := (c - b) / b * 100
	d.DeltaPct = &pct
	if !lowerIsBetter(name) {
		if pct == 0 {
			return StatusUnchanged
		}
		return StatusChanged
	}
	switch {
	case pct > threshold:
		return StatusRegressed
	case pct < -threshold:
		return StatusImproved
	default:
		return StatusUnchanged
	}
}

func numeric(v metrics.Value) bool {
	switch v.Kind() {
	case metrics.KindInt, metrics.KindFloat, metrics.KindBytes:
		return true
	default:
		return false
	}
}
