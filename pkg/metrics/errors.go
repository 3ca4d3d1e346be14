// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import "errors"

// Sentinel errors for metric extraction.
var (
	// ErrParse indicates tool output could not be interpreted: malformed
	// JSON, a type coercion failure, or a mandatory metric that is
	// absent. The raw output is preserved alongside the error by the
	// caller for diagnosis.
	ErrParse = errors.New("failed to parse tool output")

	// ErrNoOutput indicates extraction was attempted on a nil run.
	ErrNoOutput = errors.New("no run output to extract from")
)
