// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zkbench/zkbench/pkg/backend"
	"github.com/zkbench/zkbench/pkg/bench"
	"github.com/zkbench/zkbench/pkg/runner"
)

// runOperation adapts one benchmark operation into a cobra Run
// function. Arguments after "--" go to the tool unchanged.
func runOperation(op backend.Operation) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		os.Exit(benchOperation(cmd.Context(), op, args))
	}
}

// benchOperation runs one operation over one case and emits the
// report.
//
// # Outputs
//
//   - int: The process exit code. Verify returns CLIExitFindings when
//     the backend rejected the proof even though the run itself
//     succeeded.
func benchOperation(ctx context.Context, op backend.Operation, args []string) int {
	timeout, err := parseTimeout(timeoutStr)
	if err != nil {
		return fail(err)
	}

	b, err := backend.Select(backend.Config{
		Name:     backendName,
		Path:     backendPath,
		Template: template,
	}, runner.New(log))
	if err != nil {
		return fail(err)
	}

	h := bench.New(b, bench.WithLogger(log))
	rep, err := h.Run(ctx, op, bench.Case{
		Label:     label,
		Artifact:  args[0],
		Inputs:    inputsPath,
		Proof:     proofPath,
		ExtraArgs: args[1:],
	}, bench.Options{
		Iterations: iterations,
		Warmup:     warmup,
		Timeout:    timeout,
		Wrap:       splitWrap(wrapCmd),
		CLIArgs:    os.Args[1:],
	})
	if err != nil {
		log.Error("benchmark failed",
			"operation", string(op), "stage", bench.FailureStage(err), "error", err)
		return fail(err)
	}

	if jsonOut != "" {
		if err := rep.Write(jsonOut, true); err != nil {
			return fail(err)
		}
	}
	if !quiet {
		if err := OutputJSON(rep); err != nil {
			return fail(err)
		}
	}

	if op == backend.OpVerify {
		if verdict, isBool := rep.Metrics["ok"].Bool(); isBool && !verdict {
			return CLIExitFindings
		}
	}
	return CLIExitSuccess
}

// splitWrap turns the wrapper flag into a command prefix.
func splitWrap(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Fields(s)
}
