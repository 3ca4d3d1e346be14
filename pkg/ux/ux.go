// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux renders comparison and suite results for humans. Styling
// is applied only when stdout is a terminal; piped output stays plain.
package ux

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/zkbench/zkbench/pkg/compare"
	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/suite"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// StdoutIsTerminal reports whether stdout is an interactive terminal.
func StdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Renderer writes human-readable result views.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer creates a Renderer. Styling applies only when color is
// set.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// Comparison renders a per-metric delta table and the verdict line.
func (r *Renderer) Comparison(res *compare.Result) {
	fmt.Fprintln(r.w, r.style(titleStyle,
		fmt.Sprintf("%s / %s  (threshold %.1f%%)", res.Case, res.Name, res.ThresholdPct)))

	width := 0
	for _, d := range res.Deltas {
		if len(d.Name) > width {
			width = len(d.Name)
		}
	}
	for _, d := range res.Deltas {
		line := fmt.Sprintf("  %-*s  %10s -> %-10s %s",
			width, d.Name, cell(d.Baseline), cell(d.Contender), deltaText(d))
		switch d.Status {
		case compare.StatusRegressed:
			line = r.style(badStyle, line)
		case compare.StatusImproved:
			line = r.style(goodStyle, line)
		case compare.StatusUnavailable:
			line = r.style(dimStyle, line)
		}
		fmt.Fprintln(r.w, line)
	}

	if res.Regressed {
		fmt.Fprintln(r.w, r.style(badStyle, "REGRESSED"))
	} else {
		fmt.Fprintln(r.w, r.style(goodStyle, "PASS"))
	}
}

// Summary renders the suite outcome counts and failed runs.
func (r *Renderer) Summary(s *suite.Summary) {
	fmt.Fprintln(r.w, r.style(titleStyle,
		fmt.Sprintf("suite: %d planned, %d succeeded, %d failed",
			s.Planned, s.Succeeded, s.Failed)))

	for _, name := range sortedKeys(s.PerBackend) {
		c := s.PerBackend[name]
		fmt.Fprintf(r.w, "  backend %-16s %d ok, %d failed\n", name, c.Succeeded, c.Failed)
	}
	for _, name := range sortedKeys(s.PerOperation) {
		c := s.PerOperation[name]
		fmt.Fprintf(r.w, "  op      %-16s %d ok, %d failed\n", name, c.Succeeded, c.Failed)
	}

	for _, res := range s.Results {
		if res.Err == nil {
			continue
		}
		fmt.Fprintln(r.w, r.style(badStyle,
			fmt.Sprintf("  FAIL %s/%s/%s: %v", res.Case, res.Backend, res.Operation, res.Err)))
	}
}

func cell(v *metrics.Value) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

func deltaText(d compare.Delta) string {
	if d.Status == compare.StatusUnavailable {
		return "(unavailable for comparison)"
	}
	if d.DeltaPct == nil {
		return string(d.Status)
	}
	return fmt.Sprintf("%+.2f%% %s", *d.DeltaPct, d.Status)
}

func sortedKeys(m map[string]suite.Counts) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
