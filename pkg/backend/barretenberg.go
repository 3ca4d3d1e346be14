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

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/runner"
)

// Barretenberg drives the bb CLI with its fixed argument shapes:
//
//	gates:  bb gates -b <artifact>
//	prove:  bb prove -b <artifact> -w <witness> -o <outdir>
//	verify: bb verify -p <proof> [-k <vk>]
//
// bb writes proof and vk files into the output directory when proving;
// those paths are recorded as run artifacts so sizes can be measured
// from the filesystem.
type Barretenberg struct {
	path      string
	extraArgs []string
	run       *runner.Runner
}

// NewBarretenberg creates the built-in bb backend. An empty path means
// "bb" from PATH.
func NewBarretenberg(path string, extraArgs []string, run *runner.Runner) *Barretenberg {
	if path == "" {
		path = "bb"
	}
	return &Barretenberg{path: path, extraArgs: extraArgs, run: run}
}

func (b *Barretenberg) Name() string { return "barretenberg" }

func (b *Barretenberg) Version(ctx context.Context) string {
	return queryVersion(ctx, b.run, b.path)
}

func (b *Barretenberg) Strategy(op Operation) metrics.Strategy {
	// bb gates emits JSON; prove/verify report through exit codes and
	// artifacts, which the text strategy handles.
	if op == OpGates {
		return metrics.StrategyStructured
	}
	return metrics.StrategyText
}

func (b *Barretenberg) Validate(op Operation) error {
	switch op {
	case OpGates, OpProve, OpVerify:
		return nil
	case OpExecute:
		return fmt.Errorf("%w: barretenberg does not execute circuits, use nargo", ErrUnsupportedOperation)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

func (b *Barretenberg) Run(ctx context.Context, op Operation, req *RunRequest) (*runner.RawOutput, error) {
	if err := b.Validate(op); err != nil {
		return nil, err
	}

	var args []string
	var produced []string
	switch op {
	case OpGates:
		args = []string{"gates", "-b", req.Artifact}
	case OpProve:
		witness := req.Inputs
		if witness == "" {
			return nil, fmt.Errorf("%w: prove needs a witness file", ErrMissingInput)
		}
		outDir := req.Workspace.Dir()
		args = []string{"prove", "-b", req.Artifact, "-w", witness, "-o", outDir}
		produced = []string{
			filepath.Join(outDir, "proof"),
			filepath.Join(outDir, "vk"),
		}
	case OpVerify:
		proof := req.Proof
		if proof == "" {
			return nil, fmt.Errorf("%w: verify needs a proof file", ErrMissingInput)
		}
		args = []string{"verify", "-p", proof}
	}
	args = append(args, b.extraArgs...)
	args = append(args, req.ExtraArgs...)

	out, err := b.run.Run(ctx, runner.Spec{
		Command: b.path,
		Args:    args,
		Timeout: req.Timeout,
		Wrap:    req.Wrap,
	})
	if err != nil {
		return out, err
	}
	out.Artifacts = produced
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
