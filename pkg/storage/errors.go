// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import "errors"

var (
	// ErrSinkClosed indicates an append after Close.
	ErrSinkClosed = errors.New("storage: sink is closed")

	// ErrBadRecord indicates a malformed line in a record stream.
	ErrBadRecord = errors.New("storage: malformed record")

	// ErrInfluxConfig indicates an incomplete InfluxDB configuration.
	ErrInfluxConfig = errors.New("storage: incomplete influxdb configuration")
)
