// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkbench/zkbench/pkg/evm"
)

func runEVMVerify(cmd *cobra.Command, args []string) {
	os.Exit(executeEVMVerify(cmd.Context()))
}

// executeEVMVerify measures on-chain verification cost for one proof.
func executeEVMVerify(ctx context.Context) int {
	proofHex, err := calldataFlag(evmProofHex, evmProofFile, "proof")
	if err != nil {
		return fail(err)
	}
	publicHex, err := calldataFlag(evmPublicInHex, evmPublicInFile, "public inputs")
	if err != nil {
		return fail(err)
	}
	timeout, err := parseTimeout(evmTimeoutOverride)
	if err != nil {
		return fail(err)
	}

	opts := []evm.Option{evm.WithForgePath(evmForgePath), evm.WithLogger(log)}
	if evmGasRate > 0 {
		opts = append(opts, evm.WithGasRate(evmGasRate))
	}
	res, err := evm.NewVerifier(evmProject, opts...).Verify(ctx, proofHex, publicHex, timeout)
	if err != nil {
		return fail(err)
	}

	if err := OutputJSON(res); err != nil {
		return fail(err)
	}
	return CLIExitSuccess
}

// calldataFlag resolves one of the hex/file flag pairs. Exactly one of
// the two must be set.
func calldataFlag(hexValue, filePath, what string) (string, error) {
	switch {
	case hexValue != "" && filePath != "":
		return "", fmt.Errorf("%s: give either the hex flag or the file flag, not both", what)
	case hexValue != "":
		return hexValue, nil
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", what, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%s calldata is required", what)
	}
}
