// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package runner executes external proving tools as child processes.
//
// All backend invocations in zkbench go through Runner so that timeout
// enforcement, output capture, and wall-clock measurement behave the
// same regardless of which tool is being benchmarked. The duration in
// RawOutput is always measured by the harness itself; a tool's
// self-reported timing is parsed later as an ordinary metric, never
// trusted for orchestration.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/zkbench/zkbench/pkg/logging"
)

// DefaultMaxOutputBytes caps captured stdout/stderr per stream.
const DefaultMaxOutputBytes = 4 << 20

// Spec describes a single process invocation.
type Spec struct {
	// Command is the binary name or path to execute.
	Command string

	// Args are the command arguments, already fully resolved.
	Args []string

	// Dir is the working directory. Empty means inherit.
	Dir string

	// Env entries are appended to the inherited environment.
	Env []string

	// Timeout bounds the process wall clock. Zero means no timeout.
	Timeout time.Duration

	// Wrap is an optional profiling wrapper prepended to the command
	// (e.g. a flamegraph tool). The runner passes it through verbatim
	// and does not interpret its output.
	Wrap []string
}

// RawOutput is the captured result of one process run.
//
// It is owned by the runner until returned, then read-only: metric
// extraction must not mutate it.
type RawOutput struct {
	// ExitCode is the process exit status. Zero means success.
	ExitCode int

	// Stdout and Stderr hold the captured streams, possibly truncated
	// to the runner's output cap.
	Stdout string
	Stderr string

	// Duration is the harness-measured wall-clock time of the process.
	Duration time.Duration

	// Artifacts lists files the run produced in its workspace, filled
	// in by the caller that owns the workspace.
	Artifacts []string
}

// Success reports whether the process exited cleanly.
func (o *RawOutput) Success() bool {
	return o.ExitCode == 0
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxOutputBytes overrides the per-stream capture cap.
func WithMaxOutputBytes(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxOutput = n
		}
	}
}

// Runner executes external commands with timeout enforcement.
//
// # Thread Safety
//
// Safe for concurrent use. Each Run creates its own process.
type Runner struct {
	maxOutput int
	logger    *logging.Logger
}

// New creates a Runner.
func New(logger *logging.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Runner{
		maxOutput: DefaultMaxOutputBytes,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the spec and blocks until the process exits or the
// timeout fires.
//
// A non-zero exit is not an error at this layer: the RawOutput carries
// the exit code and captured stderr, and callers decide whether that is
// fatal for their operation. Errors are reserved for the process not
// running at all (ErrSpawn) or being cut off (ErrTimeout). On timeout
// the whole process group is terminated so no children are orphaned.
func (r *Runner) Run(ctx context.Context, spec Spec) (*RawOutput, error) {
	if spec.Command == "" {
		return nil, ErrEmptyCommand
	}

	command := spec.Command
	args := spec.Args
	if len(spec.Wrap) > 0 {
		wrapped := append(append([]string{}, spec.Wrap[1:]...), command)
		args = append(wrapped, args...)
		command = spec.Wrap[0]
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcGroup(cmd)
	cmd.Cancel = func() error { return killProcGroup(cmd) }
	cmd.WaitDelay = 5 * time.Second

	r.logger.Debug("spawning process",
		"command", command,
		"args", fmt.Sprintf("%v", args),
		"timeout", spec.Timeout,
	)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	out := &RawOutput{
		Stdout:   truncate(stdout.Bytes(), r.maxOutput),
		Stderr:   truncate(stderr.Bytes(), r.maxOutput),
		Duration: elapsed,
	}

	switch {
	case err == nil:
		out.ExitCode = 0
	case ctx.Err() == context.DeadlineExceeded:
		r.logger.Warn("process timed out",
			"command", command,
			"elapsed", elapsed,
		)
		return out, fmt.Errorf("%w: %s after %s", ErrTimeout, command, elapsed.Round(time.Millisecond))
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		} else {
			return out, fmt.Errorf("%w: %s: %v", ErrSpawn, command, err)
		}
	}

	r.logger.Debug("process finished",
		"command", command,
		"exit_code", out.ExitCode,
		"elapsed", elapsed,
	)
	return out, nil
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "\n... [output truncated]"
}
