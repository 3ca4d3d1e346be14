// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backend

import "errors"

// Sentinel errors for backend configuration. All of these are
// configuration errors: they surface during validation, before any
// process is spawned.
var (
	// ErrUnknownBackend indicates a backend name with no registered
	// implementation.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrUnknownOperation indicates an operation outside the closed
	// execute/gates/prove/verify set.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrUnsupportedOperation indicates the selected backend cannot
	// perform the requested operation.
	ErrUnsupportedOperation = errors.New("operation not supported by backend")

	// ErrEmptyTemplate indicates a generic backend with no command.
	ErrEmptyTemplate = errors.New("empty command template")

	// ErrMissingPlaceholder indicates a generic template lacking a
	// placeholder the requested operation requires.
	ErrMissingPlaceholder = errors.New("template missing required placeholder")

	// ErrMissingInput indicates a run request without a file the
	// operation needs (e.g. prove without an input assignment).
	ErrMissingInput = errors.New("missing required input")
)
