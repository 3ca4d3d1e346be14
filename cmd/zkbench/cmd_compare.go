// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zkbench/zkbench/pkg/compare"
	"github.com/zkbench/zkbench/pkg/report"
	"github.com/zkbench/zkbench/pkg/ux"
)

func runCompare(cmd *cobra.Command, args []string) {
	os.Exit(executeCompare(args[0], args[1]))
}

// executeCompare loads both reports and classifies the movement.
func executeCompare(baselinePath, contenderPath string) int {
	baseline, err := report.Load(baselinePath)
	if err != nil {
		return fail(err)
	}
	contender, err := report.Load(contenderPath)
	if err != nil {
		return fail(err)
	}

	res := compare.Reports(baseline, contender, compare.Options{ThresholdPct: thresholdPct})

	if compareJSON {
		if err := OutputJSON(res); err != nil {
			return fail(err)
		}
	} else if !quiet {
		ux.NewRenderer(os.Stdout, ux.StdoutIsTerminal() && !noColor).Comparison(res)
	}

	if res.Regressed {
		return CLIExitFindings
	}
	return CLIExitSuccess
}
