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
	"os"
	"time"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/runner"
)

// Mock is a backend that produces deterministic canned output without
// spawning a process. It exists so the whole pipeline (extraction,
// aggregation, reporting, suites) can be exercised with no external
// tool installed.
type Mock struct {
	// FailOps makes the listed operations return a non-zero exit.
	FailOps map[Operation]bool

	// Gates / ProofBytes / VerifyOK override the canned values.
	Gates      int64
	ProofBytes int
	VerifyOK   bool
}

// NewMock creates a Mock with the default canned values: 1000 gates,
// a 4096-byte proof, and successful verification.
func NewMock() *Mock {
	return &Mock{
		Gates:      1000,
		ProofBytes: 4096,
		VerifyOK:   true,
	}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Version(context.Context) string { return "mock-1.0.0" }

func (m *Mock) Strategy(op Operation) metrics.Strategy {
	if op == OpGates {
		return metrics.StrategyStructured
	}
	return metrics.StrategyText
}

func (m *Mock) Validate(op Operation) error {
	if _, err := ParseOperation(string(op)); err != nil {
		return err
	}
	return nil
}

// Run returns canned output shaped exactly like a real tool's: gates as
// a bb-style JSON document, prove as a proof file written into the
// workspace, verify as an exit-code verdict. Durations are synthetic
// but stable across invocations.
func (m *Mock) Run(_ context.Context, op Operation, req *RunRequest) (*runner.RawOutput, error) {
	if err := m.Validate(op); err != nil {
		return nil, err
	}

	if m.FailOps[op] {
		return &runner.RawOutput{
			ExitCode: 1,
			Stderr:   fmt.Sprintf("mock backend: %s forced to fail", op),
			Duration: time.Millisecond,
		}, nil
	}

	out := &runner.RawOutput{}
	switch op {
	case OpExecute:
		out.Stdout = "circuit executed\n"
		out.Duration = 5 * time.Millisecond
	case OpGates:
		out.Stdout = fmt.Sprintf(`{"functions":[{"acir_opcodes":50,"circuit_size":%d,"gates_per_opcode":[]}]}`, m.Gates)
		out.Duration = 2 * time.Millisecond
	case OpProve:
		proofPath := req.Workspace.Path("proof")
		if err := os.WriteFile(proofPath, make([]byte, m.ProofBytes), 0o600); err != nil {
			return nil, err
		}
		out.Stdout = "proof written\n"
		out.Duration = 10 * time.Millisecond
		out.Artifacts = []string{proofPath}
	case OpVerify:
		if m.VerifyOK {
			out.Stdout = "verified\n"
		} else {
			out.ExitCode = 1
			out.Stderr = "proof rejected\n"
		}
		out.Duration = 2 * time.Millisecond
	}
	return out, nil
}
