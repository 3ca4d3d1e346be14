// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package suite executes a declarative matrix of benchmark cases
// against backends and operations, streaming one record per planned
// run to an append-only sink.
//
// The whole configuration is validated before anything executes, so a
// configuration error is reported once with no partial results. During
// execution a run's failure is itself a record; the sink's record
// count always equals the planned run count unless abort_on_failure
// stops the suite early.
package suite

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zkbench/zkbench/pkg/backend"
	"github.com/zkbench/zkbench/pkg/bench"
	"github.com/zkbench/zkbench/pkg/logging"
	"github.com/zkbench/zkbench/pkg/report"
	"github.com/zkbench/zkbench/pkg/runner"
	"github.com/zkbench/zkbench/pkg/storage"
	"github.com/zkbench/zkbench/pkg/sysinfo"
)

// plannedRun is one cell of the case x backend x operation matrix.
type plannedRun struct {
	op      backend.Operation
	backend backend.Backend
	label   string
	c       bench.Case
}

// RunResult pairs one planned run with its outcome. Exactly one of
// Report and Err reflects success; a failed run still carries the
// failure report that went to the sink.
type RunResult struct {
	Case      string
	Backend   string
	Operation string
	Report    *report.Report
	Err       error
}

// Counts tallies run outcomes.
type Counts struct {
	Succeeded int
	Failed    int
}

// Summary aggregates a finished suite.
type Summary struct {
	Planned      int
	Succeeded    int
	Failed       int
	PerBackend   map[string]Counts
	PerOperation map[string]Counts
	Results      []RunResult
}

// Runner executes a suite configuration.
type Runner struct {
	cfg    *Config
	logger *logging.Logger
	proc   *runner.Runner
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger overrides the default logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a suite runner for the given configuration.
func NewRunner(cfg *Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, logger: logging.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.proc = runner.New(r.logger)
	return r
}

// plan validates the full matrix and returns every run to perform.
// Any problem found here is a configuration error that aborts the
// suite with nothing executed.
func (r *Runner) plan() ([]plannedRun, error) {
	ops := make([]backend.Operation, 0, len(r.cfg.Operations))
	for _, name := range r.cfg.Operations {
		op, err := backend.ParseOperation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		ops = append(ops, op)
	}

	backends := make([]backend.Backend, 0, len(r.cfg.Backends))
	for _, bc := range r.cfg.Backends {
		b, err := backend.Select(backend.Config{
			Name:      bc.Name,
			Path:      bc.Path,
			Template:  bc.Template,
			ExtraArgs: bc.ExtraArgs,
		}, r.proc)
		if err != nil {
			return nil, fmt.Errorf("%w: backend %q: %v", ErrConfig, bc.Label(), err)
		}
		for _, op := range ops {
			if err := b.Validate(op); err != nil {
				return nil, fmt.Errorf("%w: backend %q: %v", ErrConfig, bc.Label(), err)
			}
		}
		backends = append(backends, b)
	}

	for _, cc := range r.cfg.Cases {
		for _, path := range []string{cc.Artifact, cc.Inputs, cc.Proof} {
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("%w: case %q: %v", ErrConfig, cc.Artifact, err)
			}
		}
	}

	var plan []plannedRun
	for _, cc := range r.cfg.Cases {
		for i, b := range backends {
			for _, op := range ops {
				plan = append(plan, plannedRun{
					op:      op,
					backend: b,
					label:   r.cfg.Backends[i].Label(),
					c: bench.Case{
						Label:     cc.Label,
						Artifact:  cc.Artifact,
						Inputs:    cc.Inputs,
						Proof:     cc.Proof,
						ExtraArgs: cc.ExtraArgs,
					},
				})
			}
		}
	}
	return plan, nil
}

// Execute runs the whole suite and returns its summary. The summary is
// returned even when runs failed; the error is non-nil only for
// configuration or sink problems, or when abort_on_failure fired.
func (r *Runner) Execute(ctx context.Context) (*Summary, error) {
	plan, err := r.plan()
	if err != nil {
		return nil, err
	}

	sink, err := storage.OpenJSONL(r.cfg.Sink)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	var influx *storage.InfluxSink
	if r.cfg.Influx != nil {
		influx, err = storage.NewInfluxSink(storage.InfluxConfig{
			URL:    r.cfg.Influx.URL,
			Token:  r.cfg.Influx.Token,
			Org:    r.cfg.Influx.Org,
			Bucket: r.cfg.Influx.Bucket,
		})
		if err != nil {
			return nil, err
		}
		defer influx.Close()
	}

	summary := &Summary{
		Planned:      len(plan),
		PerBackend:   map[string]Counts{},
		PerOperation: map[string]Counts{},
	}
	r.logger.Info("suite starting",
		"name", r.cfg.Name, "planned", len(plan), "parallel", r.cfg.Parallel)

	var mu sync.Mutex
	record := func(res RunResult) error {
		mu.Lock()
		defer mu.Unlock()
		summary.Results = append(summary.Results, res)
		bc := summary.PerBackend[res.Backend]
		oc := summary.PerOperation[res.Operation]
		if res.Err != nil {
			summary.Failed++
			bc.Failed++
			oc.Failed++
		} else {
			summary.Succeeded++
			bc.Succeeded++
			oc.Succeeded++
		}
		summary.PerBackend[res.Backend] = bc
		summary.PerOperation[res.Operation] = oc
		if err := sink.Append(res.Report); err != nil {
			return err
		}
		// Time-series publishing is best effort: a down Influx must
		// not lose the JSONL record or stop the suite.
		if influx != nil {
			if err := influx.Publish(ctx, res.Report); err != nil {
				r.logger.Warn("influx publish failed",
					"record_id", res.Report.RecordID, "error", err)
			}
		}
		return nil
	}

	if r.cfg.Parallel > 1 {
		if err := r.executeParallel(ctx, plan, record); err != nil {
			return summary, err
		}
		return summary, nil
	}

	for _, p := range plan {
		res := r.one(ctx, p)
		if err := record(res); err != nil {
			return summary, err
		}
		if res.Err != nil && r.cfg.AbortOnFailure {
			return summary, fmt.Errorf("%w: %s/%s/%s: %v",
				ErrAborted, res.Case, res.Backend, res.Operation, res.Err)
		}
	}
	return summary, nil
}

// executeParallel runs the plan with bounded concurrency. Workspace
// isolation makes runs independent; the sink and summary are guarded
// by the shared record closure.
func (r *Runner) executeParallel(ctx context.Context, plan []plannedRun, record func(RunResult) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)
	for _, p := range plan {
		p := p
		g.Go(func() error {
			res := r.one(gctx, p)
			if err := record(res); err != nil {
				return err
			}
			if res.Err != nil && r.cfg.AbortOnFailure {
				return fmt.Errorf("%w: %s/%s/%s: %v",
					ErrAborted, res.Case, res.Backend, res.Operation, res.Err)
			}
			return nil
		})
	}
	return g.Wait()
}

// one performs a single planned run and always produces a report, so
// every planned run yields exactly one sink record.
func (r *Runner) one(ctx context.Context, p plannedRun) RunResult {
	h := bench.New(p.backend, bench.WithLogger(r.logger))
	rep, err := h.Run(ctx, p.op, p.c, bench.Options{
		Iterations: r.cfg.Iterations,
		Warmup:     r.cfg.Warmup,
		Timeout:    r.cfg.ProcessTimeout(),
	})
	res := RunResult{
		Case:      p.c.Artifact,
		Backend:   p.label,
		Operation: string(p.op),
		Err:       err,
	}
	if p.c.Label != "" {
		res.Case = p.c.Label
	}
	if err != nil {
		rep = report.New(string(p.op))
		rep.Case = report.CaseInfo{Label: p.c.Label, Artifact: p.c.Artifact, Inputs: p.c.Inputs}
		rep.Backend = report.NewBackendInfo(p.label, "")
		rep.System = sysinfo.Collect()
		rep.Failure = &report.Failure{
			Stage: bench.FailureStage(err),
			Error: err.Error(),
		}
		r.logger.Warn("run failed",
			"case", res.Case, "backend", res.Backend, "operation", res.Operation,
			"stage", rep.Failure.Stage, "error", err)
	} else {
		r.logger.Info("run complete",
			"case", res.Case, "backend", res.Backend, "operation", res.Operation)
	}
	res.Report = rep
	return res
}
