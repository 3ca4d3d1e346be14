// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zkbench/zkbench/pkg/storage"
)

func runExportCSV(cmd *cobra.Command, args []string) {
	os.Exit(executeExportCSV(args[0]))
}

// executeExportCSV reads an accumulated record stream and writes it as
// one flat CSV table, to --out or stdout.
func executeExportCSV(recordsPath string) int {
	records, err := storage.ReadJSONL(recordsPath)
	if err != nil {
		return fail(err)
	}

	out := io.Writer(os.Stdout)
	if csvOut != "" {
		if dir := filepath.Dir(csvOut); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fail(err)
			}
		}
		f, err := os.Create(csvOut)
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		out = f
	}

	if err := storage.WriteCSV(out, records); err != nil {
		return fail(err)
	}
	log.Info("csv exported", "records", len(records), "out", csvOut)
	return CLIExitSuccess
}
