// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setProcGroup puts the child in its own process group so a timeout can
// take down the whole tree, not only the direct child.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	// Negative pid signals the process group.
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
