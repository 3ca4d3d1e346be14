// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/runner"
)

// Nargo drives the Noir toolchain for unconstrained circuit execution.
// It covers the one operation bb cannot: running the circuit against an
// input assignment to produce a witness.
//
//	execute: nargo execute --program-dir <dir> [--prover-name <name>]
type Nargo struct {
	path      string
	extraArgs []string
	run       *runner.Runner
}

// NewNargo creates the built-in nargo backend. An empty path means
// "nargo" from PATH.
func NewNargo(path string, extraArgs []string, run *runner.Runner) *Nargo {
	if path == "" {
		path = "nargo"
	}
	return &Nargo{path: path, extraArgs: extraArgs, run: run}
}

func (n *Nargo) Name() string { return "nargo" }

// Version queries "nargo --version" and normalizes the several formats
// nargo has used over time.
func (n *Nargo) Version(ctx context.Context) string {
	out, err := n.run.Run(ctx, runner.Spec{
		Command: n.path,
		Args:    []string{"--version"},
		Timeout: 10 * time.Second,
	})
	if err != nil || !out.Success() {
		return ""
	}
	return parseNargoVersion(out.Stdout)
}

func (n *Nargo) Strategy(Operation) metrics.Strategy {
	return metrics.StrategyText
}

func (n *Nargo) Validate(op Operation) error {
	switch op {
	case OpExecute:
		return nil
	case OpGates, OpProve, OpVerify:
		return fmt.Errorf("%w: nargo only executes circuits, use a proving backend for %s", ErrUnsupportedOperation, op)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

func (n *Nargo) Run(ctx context.Context, op Operation, req *RunRequest) (*runner.RawOutput, error) {
	if err := n.Validate(op); err != nil {
		return nil, err
	}

	// The artifact lives in <project>/target/<name>.json; nargo wants
	// the project directory.
	projectDir := filepath.Dir(req.Artifact)
	if filepath.Base(projectDir) == "target" {
		projectDir = filepath.Dir(projectDir)
	}

	args := []string{"execute", "--program-dir", projectDir}
	if req.Inputs != "" {
		name := strings.TrimSuffix(filepath.Base(req.Inputs), filepath.Ext(req.Inputs))
		args = append(args, "--prover-name", name)
	}
	args = append(args, n.extraArgs...)
	args = append(args, req.ExtraArgs...)

	return n.run.Run(ctx, runner.Spec{
		Command: n.path,
		Args:    args,
		Timeout: req.Timeout,
		Wrap:    req.Wrap,
	})
}

// parseNargoVersion handles "nargo version = 0.38.0", "nargo 0.38.0",
// and bare version strings.
func parseNargoVersion(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(s, "nargo version = "); ok {
		return firstField(rest)
	}
	if rest, ok := strings.CutPrefix(s, "nargo "); ok {
		return firstField(rest)
	}
	first := firstField(s)
	if first != "" && first[0] >= '0' && first[0] <= '9' {
		return first
	}
	return firstLine(s)
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
