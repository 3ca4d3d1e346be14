// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for zkbench components.
//
// The logging system is built on Go's standard library slog package.
// By default logs go to stderr (Unix CLI convention: stdout is reserved
// for reports and machine-readable command output). File logging can be
// enabled for long suite runs.
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("starting prove", "artifact", artifactPath)
//	logger.Error("backend failed", "error", err)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level controls the minimum severity that is emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a string level name to a Level.
//
// Unknown names fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config controls logger construction.
type Config struct {
	// Level sets the minimum log level. Default: LevelInfo.
	Level Level

	// Service identifies the component generating logs. The value is
	// attached to every entry as the "service" attribute.
	Service string

	// JSON switches stderr output to JSON objects. File logs are always
	// JSON regardless of this setting.
	JSON bool

	// Quiet disables stderr output entirely. Logs still go to the file
	// if LogDir is set.
	Quiet bool

	// LogDir enables file logging to the given directory. The file is
	// named "{Service}_{YYYY-MM-DD}.log". Empty disables file logging.
	LogDir string
}

// Logger is a structured logger with optional file output.
//
// # Thread Safety
//
// Safe for concurrent use. Close must be called at most once.
type Logger struct {
	slog   *slog.Logger
	config Config
	file   *os.File
	mu     sync.Mutex
}

// New creates a Logger from the given configuration.
//
// The returned Logger should be closed with Close when file logging is
// enabled, to flush and release the file handle.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handlers []slog.Handler
	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	logger := &Logger{config: config}

	if config.LogDir != "" {
		if err := os.MkdirAll(config.LogDir, 0o750); err == nil {
			service := config.Service
			if service == "" {
				service = "zkbench"
			}
			name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			f, err := os.OpenFile(filepath.Join(config.LogDir, name),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
			if err == nil {
				logger.file = f
				handlers = append(handlers, slog.NewJSONHandler(f, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		// Quiet with no log file: swallow everything.
		handler = slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)})
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns a stderr-only text logger at Info level.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "zkbench"})
}

// Debug logs a message at Debug level with key/value attributes.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs a message at Info level with key/value attributes.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs a message at Warn level with key/value attributes.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs a message at Error level with key/value attributes.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child Logger that includes the given attributes on
// every entry. The child shares the parent's destinations.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), config: l.config}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// multiHandler fans a record out to every wrapped handler.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}
