// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	return New(nil)
}

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := newTestRunner(t)
	out, err := r.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo hello; echo oops >&2"},
	})
	require.NoError(t, err)
	assert.True(t, out.Success())
	assert.Contains(t, out.Stdout, "hello")
	assert.Contains(t, out.Stderr, "oops")
	assert.Greater(t, out.Duration, time.Duration(0))
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := newTestRunner(t)
	out, err := r.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo bad >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.False(t, out.Success())
	assert.Equal(t, 3, out.ExitCode)
	assert.Contains(t, out.Stderr, "bad")
}

func TestRunTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := newTestRunner(t)
	start := time.Now()
	_, err := r.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "sleep 10"},
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "want ErrTimeout, got %v", err)
	// Generous slack for loaded CI machines, but nowhere near the 10s sleep.
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRunSpawnError(t *testing.T) {
	r := newTestRunner(t)
	_, err := r.Run(context.Background(), Spec{
		Command: "definitely-not-a-real-binary-zkbench",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSpawn), "want ErrSpawn, got %v", err)
}

func TestRunEmptyCommand(t *testing.T) {
	r := newTestRunner(t)
	_, err := r.Run(context.Background(), Spec{})
	assert.True(t, errors.Is(err, ErrEmptyCommand))
}

func TestWorkspaceLifecycle(t *testing.T) {
	ws, err := NewWorkspace("test")
	require.NoError(t, err)

	src := ws.Path("ignore-src.txt")
	require.NoError(t, os.WriteFile(src, []byte("input data"), 0o600))

	staged, err := ws.Stage(src)
	require.NoError(t, err)
	assert.FileExists(t, staged)

	arts := ws.Artifacts()
	assert.NotEmpty(t, arts)

	require.NoError(t, ws.Close())
	assert.NoDirExists(t, ws.Dir())

	// Close is idempotent; Stage after Close fails cleanly.
	require.NoError(t, ws.Close())
	_, err = ws.Stage(src)
	assert.True(t, errors.Is(err, ErrWorkspaceClosed))
}
