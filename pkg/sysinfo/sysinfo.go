// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sysinfo collects a best-effort snapshot of the host
// environment for report records. Collection never fails: fields that
// cannot be determined are simply absent, and readers treat the blob
// as opaque key/value context rather than comparable data.
package sysinfo

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Collect gathers the environment snapshot.
func Collect() map[string]string {
	info := map[string]string{
		"os":    runtime.GOOS,
		"arch":  runtime.GOARCH,
		"cores": strconv.Itoa(runtime.NumCPU()),
	}
	if model := cpuModel(); model != "" {
		info["cpu"] = model
	}
	if mb := memTotalMB(); mb > 0 {
		info["ram_mb"] = strconv.FormatInt(mb, 10)
	}
	if host, err := os.Hostname(); err == nil {
		info["hostname"] = host
	}
	return info
}

// cpuModel reads the CPU model string from /proc/cpuinfo. Empty on
// platforms without procfs.
func cpuModel() string {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "model name") {
			if _, value, ok := strings.Cut(line, ":"); ok {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// memTotalMB reads total system memory from /proc/meminfo. Zero on
// platforms without procfs.
func memTotalMB() int64 {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[0] == "MemTotal:" {
			kb, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return 0
			}
			return kb / 1024
		}
	}
	return 0
}
