// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backend

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkbench/zkbench/pkg/runner"
)

func TestParseOperation(t *testing.T) {
	for _, name := range []string{"execute", "gates", "prove", "verify"} {
		op, err := ParseOperation(name)
		require.NoError(t, err)
		assert.Equal(t, Operation(name), op)
	}
	_, err := ParseOperation("compile")
	assert.True(t, errors.Is(err, ErrUnknownOperation))
}

func TestSelectUnknownBackend(t *testing.T) {
	_, err := Select(Config{Name: "starkotron"}, runner.New(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBackend))

	_, err = Select(Config{}, runner.New(nil))
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestSelectBuiltins(t *testing.T) {
	run := runner.New(nil)

	b, err := Select(Config{Name: "bb", Path: "/opt/bb"}, run)
	require.NoError(t, err)
	assert.Equal(t, "barretenberg", b.Name())

	n, err := Select(Config{Name: "nargo"}, run)
	require.NoError(t, err)
	assert.Equal(t, "nargo", n.Name())

	m, err := Select(Config{Name: "mock"}, run)
	require.NoError(t, err)
	assert.Equal(t, "mock", m.Name())

	g, err := Select(Config{Template: "prover gates -b {artifact}"}, run)
	require.NoError(t, err)
	assert.Equal(t, "generic", g.Name())
}

func TestBarretenbergOperationSupport(t *testing.T) {
	b := NewBarretenberg("", nil, runner.New(nil))
	assert.NoError(t, b.Validate(OpGates))
	assert.NoError(t, b.Validate(OpProve))
	assert.NoError(t, b.Validate(OpVerify))
	assert.True(t, errors.Is(b.Validate(OpExecute), ErrUnsupportedOperation))
}

func TestNargoOperationSupport(t *testing.T) {
	n := NewNargo("", nil, runner.New(nil))
	assert.NoError(t, n.Validate(OpExecute))
	assert.True(t, errors.Is(n.Validate(OpProve), ErrUnsupportedOperation))
}

func TestParseNargoVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nargo version = 0.38.0", "0.38.0"},
		{"nargo 0.38.0", "0.38.0"},
		{"0.38.0\n", "0.38.0"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseNargoVersion(tt.in), "input %q", tt.in)
	}
}

func TestGenericTemplateResolution(t *testing.T) {
	ws, err := runner.NewWorkspace("generic-test")
	require.NoError(t, err)
	defer ws.Close()

	g, err := NewGeneric("", "bb prove -b {artifact} -w {witness} -o {proof}", nil, runner.New(nil))
	require.NoError(t, err)

	req := &RunRequest{
		Artifact:  "program.json",
		Inputs:    "/tmp/x/witness.gz",
		Proof:     "/tmp/x/proof",
		Workspace: ws,
	}
	resolved := make([]string, len(g.template))
	for i, part := range g.template {
		part = strings.ReplaceAll(part, PlaceholderArtifact, req.Artifact)
		part = strings.ReplaceAll(part, PlaceholderWitness, req.Inputs)
		part = strings.ReplaceAll(part, PlaceholderProof, req.Proof)
		resolved[i] = part
	}
	assert.Equal(t, []string{"bb", "prove", "-b", "program.json", "-w", "/tmp/x/witness.gz", "-o", "/tmp/x/proof"}, resolved)
}

func TestGenericPlaceholderValidation(t *testing.T) {
	run := runner.New(nil)

	g, err := NewGeneric("", "prover gates -b {artifact}", nil, run)
	require.NoError(t, err)
	assert.NoError(t, g.Validate(OpGates))

	err = g.Validate(OpProve)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPlaceholder))

	_, err = NewGeneric("", "   ", nil, run)
	assert.True(t, errors.Is(err, ErrEmptyTemplate))
}

func TestConfigExtraArgsForwarded(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires echo")
	}
	ws, err := runner.NewWorkspace("extra-args")
	require.NoError(t, err)
	defer ws.Close()

	run := runner.New(nil)
	ctx := context.Background()

	// Config-level extra args come before per-run extra args.
	g, err := Select(Config{
		Template:  "echo {artifact}",
		ExtraArgs: []string{"--from-config"},
	}, run)
	require.NoError(t, err)
	out, err := g.Run(ctx, OpGates, &RunRequest{
		Artifact:  "program.json",
		ExtraArgs: []string{"--per-run"},
		Workspace: ws,
	})
	require.NoError(t, err)
	assert.Equal(t, "program.json --from-config --per-run", strings.TrimSpace(out.Stdout))

	// The built-in backends forward them the same way.
	b := NewBarretenberg("echo", []string{"--from-config"}, run)
	out, err = b.Run(ctx, OpGates, &RunRequest{
		Artifact:  "program.json",
		ExtraArgs: []string{"--per-run"},
		Workspace: ws,
	})
	require.NoError(t, err)
	assert.Equal(t, "gates -b program.json --from-config --per-run", strings.TrimSpace(out.Stdout))

	n := NewNargo("echo", []string{"--from-config"}, run)
	out, err = n.Run(ctx, OpExecute, &RunRequest{
		Artifact:  "proj/target/program.json",
		ExtraArgs: []string{"--per-run"},
		Workspace: ws,
	})
	require.NoError(t, err)
	assert.Equal(t, "execute --program-dir proj --from-config --per-run", strings.TrimSpace(out.Stdout))
}

func TestGenericVerifyWithoutProofIsConfigError(t *testing.T) {
	ws, err := runner.NewWorkspace("verify-noproof")
	require.NoError(t, err)
	defer ws.Close()

	g, err := NewGeneric("", "prover verify -p {proof}", nil, runner.New(nil))
	require.NoError(t, err)

	_, err = g.Run(context.Background(), OpVerify, &RunRequest{
		Artifact:  "program.json",
		Workspace: ws,
	})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestSplitCommandQuoting(t *testing.T) {
	parts, err := splitCommand(`prover run --label "my circuit" {artifact}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"prover", "run", "--label", "my circuit", "{artifact}"}, parts)

	_, err = splitCommand(`prover "unterminated`)
	assert.Error(t, err)
}

func TestMockDeterministicRuns(t *testing.T) {
	ws, err := runner.NewWorkspace("mock-test")
	require.NoError(t, err)
	defer ws.Close()

	m := NewMock()
	ctx := context.Background()
	req := &RunRequest{Artifact: "program.json", Workspace: ws}

	gates, err := m.Run(ctx, OpGates, req)
	require.NoError(t, err)
	assert.Contains(t, gates.Stdout, `"circuit_size":1000`)

	prove, err := m.Run(ctx, OpProve, req)
	require.NoError(t, err)
	require.Len(t, prove.Artifacts, 1)
	assert.FileExists(t, prove.Artifacts[0])

	verify, err := m.Run(ctx, OpVerify, req)
	require.NoError(t, err)
	assert.True(t, verify.Success())

	m.FailOps = map[Operation]bool{OpProve: true}
	failed, err := m.Run(ctx, OpProve, req)
	require.NoError(t, err)
	assert.False(t, failed.Success())
	assert.Contains(t, failed.Stderr, "forced to fail")
}
