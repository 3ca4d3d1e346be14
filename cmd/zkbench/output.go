// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Operation completed successfully
	CLIExitFindings = 1 // Completed, but a regression or rejected proof was found
	CLIExitError    = 2 // Operation failed
)

// OutputJSON writes structured data as indented JSON to stdout.
func OutputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// fail prints an error and returns the generic error exit code.
func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return CLIExitError
}

// parseTimeout parses an optional duration flag, zero when empty.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("bad timeout %q", s)
	}
	return d, nil
}
