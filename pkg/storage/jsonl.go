// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage persists benchmark reports: an append-only JSONL
// sink for suite runs, a CSV export for spreadsheet consumption, and
// an optional InfluxDB publisher for dashboards.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zkbench/zkbench/pkg/report"
)

// JSONLWriter appends one JSON document per line to a file. A suite
// holds exactly one writer; concurrent runs share it safely.
//
// # Thread Safety
//
// Safe for concurrent use.
type JSONLWriter struct {
	mu     sync.Mutex
	f      *os.File
	closed bool
}

// OpenJSONL opens the sink for appending, creating the file and its
// parent directories as needed.
func OpenJSONL(path string) (*JSONLWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create sink directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open sink %s: %w", path, err)
	}
	return &JSONLWriter{f: f}, nil
}

// Append writes one report as a single line. Each call is one write
// syscall, so records never interleave.
func (w *JSONLWriter) Append(r *report.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrSinkClosed
	}
	if _, err := w.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Close flushes and closes the sink. Safe to call twice.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}

// ReadJSONL loads every record from a JSONL file. Blank lines are
// skipped; a malformed line fails the whole read with its line number.
func ReadJSONL(path string) ([]*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records %s: %w", path, err)
	}
	defer f.Close()

	var out []*report.Report
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var r report.Report
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrBadRecord, path, line, err)
		}
		out = append(out, &r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	return out, nil
}
