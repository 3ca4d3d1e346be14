// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkbench/zkbench/pkg/suite"
	"github.com/zkbench/zkbench/pkg/ux"
)

func runSuite(cmd *cobra.Command, args []string) {
	os.Exit(executeSuite(cmd.Context(), args[0]))
}

// executeSuite runs a suite config and renders its summary.
// Configuration errors exit 2 with nothing executed; a completed suite
// with failed runs exits 1.
func executeSuite(ctx context.Context, configPath string) int {
	cfg, err := suite.LoadConfig(configPath)
	if err != nil {
		return fail(err)
	}

	summary, err := suite.NewRunner(cfg, suite.WithLogger(log)).Execute(ctx)
	if err != nil && !errors.Is(err, suite.ErrAborted) {
		return fail(err)
	}

	if !quiet {
		ux.NewRenderer(os.Stdout, ux.StdoutIsTerminal() && !noColor).Summary(summary)
	}
	if errors.Is(err, suite.ErrAborted) || summary.Failed > 0 {
		return CLIExitFindings
	}
	return CLIExitSuccess
}
