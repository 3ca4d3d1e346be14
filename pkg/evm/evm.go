// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package evm measures the on-chain cost of verifying a proof: it
// stages proof and public-input calldata into a Foundry project, runs
// the project's verifier test under forge's gas reporting, and turns
// the observed gas into a latency estimate.
package evm

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zkbench/zkbench/pkg/logging"
	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/runner"
)

// FieldElementBytes is the size of one public input on the EVM side.
const FieldElementBytes = 32

// DefaultGasPerSecond converts gas to latency: a 15M-gas target block
// per 12-second slot. Override with WithGasRate for other chains.
const DefaultGasPerSecond = 1_250_000.0

// calldataDir is created inside the Foundry project for the staged
// inputs the verifier test reads.
const calldataDir = "bench_inputs"

// DecodeHexBlob decodes a hex calldata blob. A 0x prefix and
// surrounding whitespace are tolerated; anything else non-hex is a
// configuration error.
func DecodeHexBlob(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHex, err)
	}
	return data, nil
}

// PublicInputCount validates a decoded public-input blob and returns
// the number of field elements in it.
func PublicInputCount(blob []byte) (int, error) {
	if len(blob)%FieldElementBytes != 0 {
		return 0, fmt.Errorf("%w: got %d bytes", ErrPublicInputs, len(blob))
	}
	return len(blob) / FieldElementBytes, nil
}

// Result is one on-chain verification measurement.
type Result struct {
	GasUsed            int64   `json:"gas_used"`
	CalldataBytes      int64   `json:"calldata_bytes"`
	PublicInputCount   int     `json:"public_input_count"`
	EstimatedLatencyMs float64 `json:"estimated_latency_ms"`
}

// Verifier drives forge against a Foundry project that contains the
// generated verifier contract and its test.
type Verifier struct {
	projectDir string
	forgePath  string
	gasRate    float64
	run        *runner.Runner
	logger     *logging.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithForgePath overrides the forge binary location.
func WithForgePath(path string) Option {
	return func(v *Verifier) { v.forgePath = path }
}

// WithGasRate overrides the gas-per-second rate used for the latency
// estimate.
func WithGasRate(rate float64) Option {
	return func(v *Verifier) { v.gasRate = rate }
}

// WithLogger overrides the default logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// NewVerifier creates a Verifier over the given Foundry project.
func NewVerifier(projectDir string, opts ...Option) *Verifier {
	v := &Verifier{
		projectDir: projectDir,
		forgePath:  "forge",
		gasRate:    DefaultGasPerSecond,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.run = runner.New(v.logger)
	return v
}

// Verify stages the calldata, runs the gas-reported forge test, and
// returns the measured cost. Hex decoding problems surface before
// anything executes.
func (v *Verifier) Verify(ctx context.Context, proofHex, publicInputsHex string, timeout time.Duration) (*Result, error) {
	proof, err := DecodeHexBlob(proofHex)
	if err != nil {
		return nil, fmt.Errorf("proof: %w", err)
	}
	inputs, err := DecodeHexBlob(publicInputsHex)
	if err != nil {
		return nil, fmt.Errorf("public inputs: %w", err)
	}
	count, err := PublicInputCount(inputs)
	if err != nil {
		return nil, err
	}

	if err := v.stage(proof, inputs); err != nil {
		return nil, err
	}

	out, err := v.run.Run(ctx, runner.Spec{
		Command: v.forgePath,
		Args:    []string{"test", "--gas-report"},
		Dir:     v.projectDir,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	if !out.Success() {
		return nil, fmt.Errorf("%w: exit %d: %s", ErrForge, out.ExitCode, firstLine(out.Stderr))
	}

	gas, found := gasFrom(out.Stdout + "\n" + out.Stderr)
	if !found {
		gas, found = v.gasFromSnapshot()
	}
	if !found {
		return nil, ErrNoGas
	}

	res := &Result{
		GasUsed:            gas,
		CalldataBytes:      int64(len(proof) + len(inputs)),
		PublicInputCount:   count,
		EstimatedLatencyMs: float64(gas) / v.gasRate * 1000,
	}
	v.logger.Info("evm verification measured",
		"gas", res.GasUsed, "calldata_bytes", res.CalldataBytes,
		"estimated_latency_ms", res.EstimatedLatencyMs)
	return res, nil
}

// stage writes the decoded calldata where the verifier test expects
// it.
func (v *Verifier) stage(proof, inputs []byte) error {
	dir := filepath.Join(v.projectDir, calldataDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("stage calldata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "proof"), proof, 0o640); err != nil {
		return fmt.Errorf("stage proof: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "public_inputs"), inputs, 0o640); err != nil {
		return fmt.Errorf("stage public inputs: %w", err)
	}
	return nil
}

// gasFromSnapshot falls back to the project's .gas-snapshot file when
// forge printed no gas figure to its streams.
func (v *Verifier) gasFromSnapshot() (int64, bool) {
	data, err := os.ReadFile(filepath.Join(v.projectDir, ".gas-snapshot"))
	if err != nil {
		return 0, false
	}
	return gasFrom(string(data))
}

func gasFrom(text string) (int64, bool) {
	set := metrics.ScanText(text)
	v, present := set["gas_used"]
	if !present {
		return 0, false
	}
	return v.Int64()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	if s == "" {
		return "(no output)"
	}
	return s
}
