// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package bench

import "errors"

var (
	// ErrExecution indicates the benchmarked tool ran but failed: a
	// non-zero exit during a measured iteration.
	ErrExecution = errors.New("bench: execution failed")

	// ErrIterations indicates an invalid iteration or warmup count.
	ErrIterations = errors.New("bench: invalid iteration count")
)
