// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import "errors"

// Sentinel errors for process execution.
var (
	// ErrTimeout indicates the process exceeded its wall-clock budget and
	// was terminated. Callers must treat this as terminal for the run.
	ErrTimeout = errors.New("process timed out")

	// ErrSpawn indicates the process could not be started at all
	// (binary not found, permission denied).
	ErrSpawn = errors.New("failed to spawn process")

	// ErrEmptyCommand indicates a Spec with no command was submitted.
	ErrEmptyCommand = errors.New("empty command")

	// ErrWorkspaceClosed indicates an operation on a released workspace.
	ErrWorkspaceClosed = errors.New("workspace already closed")
)
