// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package evm

import "errors"

var (
	// ErrBadHex indicates a calldata blob that is not valid hex.
	ErrBadHex = errors.New("evm: malformed hex input")

	// ErrPublicInputs indicates a public-input blob whose length is
	// not a multiple of the 32-byte field element size.
	ErrPublicInputs = errors.New("evm: public inputs not a multiple of 32 bytes")

	// ErrNoGas indicates forge output with no recognizable gas figure.
	ErrNoGas = errors.New("evm: gas usage not found in forge output")

	// ErrForge indicates a failed forge invocation.
	ErrForge = errors.New("evm: forge test failed")
)
