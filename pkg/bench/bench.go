// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package bench runs benchmark cases: it sequences warmup and measured
// iterations over a backend operation and aggregates the results into
// a single report.
//
// The timing the harness measures around each process is the
// authoritative series; any timing the tool reports about itself is
// kept as an auxiliary metric under its own name. Every iteration gets
// a fresh scratch workspace so no state leaks between runs.
package bench

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zkbench/zkbench/pkg/backend"
	"github.com/zkbench/zkbench/pkg/logging"
	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/report"
	"github.com/zkbench/zkbench/pkg/runner"
	"github.com/zkbench/zkbench/pkg/sysinfo"
)

// Case names the inputs of one benchmark case.
type Case struct {
	// Label optionally overrides the case name derived from the
	// artifact file name.
	Label string

	// Artifact is the compiled circuit artifact path.
	Artifact string

	// Inputs optionally points at the input-assignment file.
	Inputs string

	// Proof optionally points at an existing proof, for verify.
	Proof string

	// ExtraArgs are forwarded to the tool after the backend's own
	// arguments.
	ExtraArgs []string
}

// Options control how a case is run.
type Options struct {
	// Iterations is the measured run count. Zero means one.
	Iterations int

	// Warmup is the number of discarded runs before measurement.
	Warmup int

	// Timeout bounds each individual process, not the whole series.
	Timeout time.Duration

	// Wrap optionally names a profiling wrapper command.
	Wrap []string

	// CLIArgs are recorded verbatim in the report for provenance.
	CLIArgs []string
}

// Harness drives one backend through benchmark cases.
//
// # Thread Safety
//
// Safe for concurrent use as long as the backend is.
type Harness struct {
	backend backend.Backend
	logger  *logging.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger overrides the default logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness over the given backend.
func New(b backend.Backend, opts ...Option) *Harness {
	h := &Harness{backend: b, logger: logging.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// iteration is the outcome of one completed run, captured while its
// workspace was still alive.
type iteration struct {
	out       *runner.RawOutput
	proofSize int64
}

// Run executes one operation over one case and returns the aggregated
// report.
//
// Warmup iterations may fail without failing the request; their
// results are discarded either way. A failure in any measured
// iteration fails the whole request, so a report is never built from a
// partial series.
func (h *Harness) Run(ctx context.Context, op backend.Operation, c Case, opts Options) (*report.Report, error) {
	if opts.Iterations < 0 || opts.Warmup < 0 {
		return nil, fmt.Errorf("%w: iterations=%d warmup=%d", ErrIterations, opts.Iterations, opts.Warmup)
	}
	n := opts.Iterations
	if n == 0 {
		n = 1
	}
	if err := h.backend.Validate(op); err != nil {
		return nil, err
	}

	extractor := metrics.NewExtractor(h.backend.Strategy(op), h.logger)

	for i := 0; i < opts.Warmup; i++ {
		if _, err := h.runOnce(ctx, op, c, opts); err != nil {
			h.logger.Warn("warmup iteration failed",
				"operation", string(op), "iteration", i+1, "error", err)
		}
	}

	timesMs := make([]float64, 0, n)
	var set metrics.Set
	var last iteration
	for i := 0; i < n; i++ {
		it, err := h.runOnce(ctx, op, c, opts)
		if err != nil {
			return nil, fmt.Errorf("iteration %d/%d: %w", i+1, n, err)
		}
		set, err = extractor.Extract(string(op), it.out)
		if err != nil {
			return nil, fmt.Errorf("iteration %d/%d: %w", i+1, n, err)
		}
		timesMs = append(timesMs, float64(it.out.Duration.Microseconds())/1000)
		last = it
		h.logger.Debug("iteration complete",
			"operation", string(op), "iteration", i+1, "duration", it.out.Duration)
	}

	return h.build(ctx, op, c, opts, n, timesMs, set, last), nil
}

// build assembles the report from the measured series and the final
// iteration's metric set.
func (h *Harness) build(ctx context.Context, op backend.Operation, c Case, opts Options, n int, timesMs []float64, set metrics.Set, last iteration) *report.Report {
	timeMetric := string(op) + "_time_ms"
	if n == 1 && opts.Warmup == 0 {
		set[timeMetric] = metrics.Float(timesMs[0])
	} else {
		iters := report.Summarize(opts.Warmup, timesMs)
		set[timeMetric] = metrics.Float(iters.AvgMs)
		h.logger.Info("series aggregated",
			"operation", string(op), "iterations", n, "avg_ms", iters.AvgMs)
	}

	if op == backend.OpProve {
		if _, present := set["proof_size_bytes"]; !present && last.proofSize >= 0 {
			set["proof_size_bytes"] = metrics.Bytes(last.proofSize)
		}
	}

	r := report.New(string(op))
	r.Case = report.CaseInfo{Label: c.Label, Artifact: c.Artifact, Inputs: c.Inputs}
	r.Metrics = set
	r.Backend = report.NewBackendInfo(h.backend.Name(), h.backend.Version(ctx))
	r.System = sysinfo.Collect()
	r.Meta.CLIArgs = opts.CLIArgs
	if n > 1 || opts.Warmup > 0 {
		r.Iterations = report.Summarize(opts.Warmup, timesMs)
	}
	return r
}

// runOnce performs a single iteration in a fresh workspace. The proof
// artifact size is measured here, while the workspace still exists.
func (h *Harness) runOnce(ctx context.Context, op backend.Operation, c Case, opts Options) (iteration, error) {
	ws, err := runner.NewWorkspace("zkbench-" + string(op))
	if err != nil {
		return iteration{}, err
	}
	defer ws.Close()

	out, err := h.backend.Run(ctx, op, &backend.RunRequest{
		Artifact:  c.Artifact,
		Inputs:    c.Inputs,
		Proof:     c.Proof,
		ExtraArgs: c.ExtraArgs,
		Timeout:   opts.Timeout,
		Workspace: ws,
		Wrap:      opts.Wrap,
	})
	if err != nil {
		return iteration{}, err
	}
	// For verify a non-zero exit is the backend's rejection verdict,
	// which the extractor records as ok=false; everywhere else it is an
	// execution failure.
	if !out.Success() && op != backend.OpVerify {
		return iteration{}, fmt.Errorf("%w: %s exited %d: %s",
			ErrExecution, op, out.ExitCode, stderrTail(out.Stderr))
	}

	it := iteration{out: out, proofSize: -1}
	if op == backend.OpProve {
		if path := proofArtifact(out.Artifacts); path != "" {
			if size, err := metrics.FileSize(path); err == nil {
				if n, ok := size.Int64(); ok {
					it.proofSize = n
				}
			}
		}
	}
	return it, nil
}

// proofArtifact picks the proof file out of a run's produced
// artifacts: the file literally named "proof" when present, else the
// first artifact.
func proofArtifact(artifacts []string) string {
	for _, a := range artifacts {
		if filepath.Base(a) == "proof" {
			return a
		}
	}
	if len(artifacts) > 0 {
		return artifacts[0]
	}
	return ""
}

// stderrTail returns the last non-empty stderr line, for error
// messages that stay one line long.
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "(no stderr)"
}

// FailureStage classifies an error from Run into the report failure
// taxonomy: config, spawn, timeout, parse, or execution.
func FailureStage(err error) string {
	switch {
	case errors.Is(err, runner.ErrTimeout):
		return "timeout"
	case errors.Is(err, runner.ErrSpawn):
		return "spawn"
	case errors.Is(err, metrics.ErrParse), errors.Is(err, metrics.ErrNoOutput):
		return "parse"
	case errors.Is(err, backend.ErrUnknownBackend),
		errors.Is(err, backend.ErrUnknownOperation),
		errors.Is(err, backend.ErrUnsupportedOperation),
		errors.Is(err, backend.ErrEmptyTemplate),
		errors.Is(err, backend.ErrMissingPlaceholder),
		errors.Is(err, backend.ErrMissingInput),
		errors.Is(err, ErrIterations):
		return "config"
	default:
		return "execution"
	}
}
