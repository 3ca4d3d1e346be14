// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package backend abstracts the external proving toolchains zkbench
// can drive.
//
// Each backend is a strategy object implementing the same four
// operations (execute, gates, prove, verify); which concrete command a
// backend derives for an operation is its own business, and every
// backend produces the same runner.RawOutput shape so the rest of the
// pipeline never branches on backend identity. Backends are selected by
// name at configuration time and validated before any process spawns.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/runner"
)

// Operation is one of the closed set of benchmark operations.
type Operation string

const (
	OpExecute Operation = "execute"
	OpGates   Operation = "gates"
	OpProve   Operation = "prove"
	OpVerify  Operation = "verify"
)

// Operations lists every operation in declaration order.
var Operations = []Operation{OpExecute, OpGates, OpProve, OpVerify}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	for _, known := range Operations {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// RunRequest carries everything a backend needs for one invocation of
// one operation. The workspace is owned by the caller and is fresh for
// every iteration, so backends may write scratch files into it freely.
type RunRequest struct {
	// Artifact is the compiled circuit artifact path.
	Artifact string

	// Inputs optionally points at the input-assignment file (witness
	// source) for execute and prove.
	Inputs string

	// Proof optionally points at an existing proof file for verify.
	Proof string

	// ExtraArgs are forwarded verbatim to the underlying tool, after
	// the backend's own arguments.
	ExtraArgs []string

	// Timeout bounds each spawned process.
	Timeout time.Duration

	// Workspace is the scratch directory for this iteration.
	Workspace *runner.Workspace

	// Wrap optionally names a profiling wrapper command (flamegraph)
	// passed through to the process runner.
	Wrap []string
}

// Backend is the uniform contract over proving toolchains.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; per-run state
// belongs in the RunRequest's workspace, never on the backend.
type Backend interface {
	// Name returns the backend's configured name.
	Name() string

	// Version returns the discovered tool version, best-effort. An
	// empty string means the version could not be queried; callers
	// record it as "unknown", never fail.
	Version(ctx context.Context) string

	// Strategy tells the metric extractor how this backend's output
	// for the given operation is shaped.
	Strategy(op Operation) metrics.Strategy

	// Validate checks that this backend can perform the operation
	// with its current configuration. It must be called (and pass)
	// before Run, and it never spawns a process.
	Validate(op Operation) error

	// Run performs one operation and returns the captured output.
	Run(ctx context.Context, op Operation, req *RunRequest) (*runner.RawOutput, error)
}

// Config selects and parameterizes a backend.
type Config struct {
	// Name is a built-in backend name ("barretenberg", "nargo",
	// "mock") or "generic" when Template is set.
	Name string

	// Path overrides the backend binary location.
	Path string

	// Template is a generic command template with {artifact},
	// {witness}, {proof}, {outdir} placeholders. Setting it selects
	// the generic backend regardless of Name.
	Template string

	// ExtraArgs are appended to every invocation.
	ExtraArgs []string
}

// Select resolves a Config into a Backend. Unknown names fail with
// ErrUnknownBackend before anything executes.
func Select(cfg Config, run *runner.Runner) (Backend, error) {
	if cfg.Template != "" {
		return NewGeneric(cfg.Name, cfg.Template, cfg.ExtraArgs, run)
	}
	switch cfg.Name {
	case "barretenberg", "bb":
		return NewBarretenberg(cfg.Path, cfg.ExtraArgs, run), nil
	case "nargo":
		return NewNargo(cfg.Path, cfg.ExtraArgs, run), nil
	case "mock":
		return NewMock(), nil
	case "":
		return nil, fmt.Errorf("%w: no backend name or template given", ErrUnknownBackend)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Name)
	}
}

// queryVersion runs "<binary> --version" and returns trimmed stdout,
// empty on any failure. Version discovery is never fatal.
func queryVersion(ctx context.Context, run *runner.Runner, binary string) string {
	out, err := run.Run(ctx, runner.Spec{
		Command: binary,
		Args:    []string{"--version"},
		Timeout: 10 * time.Second,
	})
	if err != nil || !out.Success() {
		return ""
	}
	return firstLine(out.Stdout)
}
