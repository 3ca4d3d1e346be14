// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is a scoped temporary directory for one benchmark run.
//
// Every iteration gets a fresh Workspace so runs never share witness or
// proof files. Close removes the directory and everything in it; the
// caller must defer Close immediately after NewWorkspace so cleanup
// happens on every exit path, including timeout and panic.
//
// # Thread Safety
//
// Safe for concurrent use, though a Workspace is normally owned by a
// single run.
type Workspace struct {
	dir    string
	mu     sync.Mutex
	closed bool
}

// NewWorkspace creates a temporary directory with the given prefix.
func NewWorkspace(prefix string) (*Workspace, error) {
	if prefix == "" {
		prefix = "zkbench"
	}
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path for a named file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Stage copies an input file into the workspace and returns the staged
// path. Staging keeps the source file untouched even if the tool under
// benchmark rewrites its inputs.
func (w *Workspace) Stage(src string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", ErrWorkspaceClosed
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", src, err)
	}
	defer in.Close()

	dst := filepath.Join(w.dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", src, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("stage %s: %w", src, err)
	}
	return dst, nil
}

// Artifacts lists every regular file currently in the workspace,
// relative paths resolved to absolute. Used to record what a tool
// produced before the workspace is torn down.
func (w *Workspace) Artifacts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}

	var files []string
	_ = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files
}

// FileSize returns the size in bytes of a file inside the workspace.
func (w *Workspace) FileSize(name string) (int64, error) {
	info, err := os.Stat(w.Path(name))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close removes the workspace directory. Safe to call more than once.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return os.RemoveAll(w.dir)
}
