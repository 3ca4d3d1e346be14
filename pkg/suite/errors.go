// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package suite

import "errors"

var (
	// ErrConfig indicates an invalid suite configuration. Configuration
	// errors abort the whole suite before anything executes.
	ErrConfig = errors.New("suite: invalid configuration")

	// ErrAborted indicates the suite stopped early because a run failed
	// while abort_on_failure was set.
	ErrAborted = errors.New("suite: aborted on first failure")
)
