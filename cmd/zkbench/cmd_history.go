// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zkbench/zkbench/pkg/history"
	"github.com/zkbench/zkbench/pkg/storage"
)

func runHistory(cmd *cobra.Command, args []string) {
	os.Exit(executeHistory(args[0]))
}

// executeHistory folds an accumulated record stream into trends and
// emits them as JSON, or as an HTML page when --html is set.
func executeHistory(recordsPath string) int {
	records, err := storage.ReadJSONL(recordsPath)
	if err != nil {
		return fail(err)
	}
	trends := history.Trends(records, historyMetric)
	log.Info("history folded",
		"records", len(records), "trends", len(trends))

	if historyHTML != "" {
		if dir := filepath.Dir(historyHTML); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fail(err)
			}
		}
		f, err := os.Create(historyHTML)
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		if err := history.RenderHTML(f, historyTitle, trends); err != nil {
			return fail(fmt.Errorf("render history page: %w", err))
		}
		return CLIExitSuccess
	}

	if err := OutputJSON(trends); err != nil {
		return fail(err)
	}
	return CLIExitSuccess
}
