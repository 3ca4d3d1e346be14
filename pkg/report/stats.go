// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import "math"

// Iterations summarizes a multi-iteration timing series. TimesMs holds
// only the measured (post-warmup) samples, one per iteration, in run
// order; the statistics are computed over that same slice.
type Iterations struct {
	Iterations int       `json:"iterations"`
	Warmup     int       `json:"warmup"`
	TimesMs    []float64 `json:"times_ms"`
	AvgMs      float64   `json:"avg_ms"`
	MinMs      float64   `json:"min_ms"`
	MaxMs      float64   `json:"max_ms"`
	StddevMs   float64   `json:"stddev_ms"`
}

// Summarize computes iteration statistics over the measured timing
// samples. Returns nil for an empty series.
func Summarize(warmup int, timesMs []float64) *Iterations {
	if len(timesMs) == 0 {
		return nil
	}
	min, max := timesMs[0], timesMs[0]
	var sum float64
	for _, t := range timesMs {
		sum += t
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	avg := sum / float64(len(timesMs))
	var sq float64
	for _, t := range timesMs {
		d := t - avg
		sq += d * d
	}
	return &Iterations{
		Iterations: len(timesMs),
		Warmup:     warmup,
		TimesMs:    timesMs,
		AvgMs:      avg,
		MinMs:      min,
		MaxMs:      max,
		StddevMs:   math.Sqrt(sq / float64(len(timesMs))),
	}
}
