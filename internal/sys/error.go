// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotELFFile is returned if the file does not have an ELF magic number.
	ErrNotELFFile = errors.New("is not an ELF file")

	// ErrOSABINotSupported is returned if the OS ABI of an ELF file is not
	// supported.
	ErrOSABINotSupported = errors.New("OSABI not supported")

	// ErrMachineNotSupported is returned if the machine type of an ELF file
	// does not match the target architecture.
	ErrMachineNotSupported = errors.New("machine type not supported")

	// ErrEmptyPath is returned if an empty path is given.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrArchNotSupported is returned if the requested architecture is not
	// supported.
	ErrArchNotSupported = errors.New("architecture not supported")

	// ErrNotRoot is returned if an operation requires the elevated privilege
	// identity but the process runs unprivileged.
	ErrNotRoot = errors.New("root privileges required")

	// ErrNoSysroot is returned if library resolution is requested without a
	// sysroot.
	ErrNoSysroot = errors.New("no sysroot configured")

	// ErrLibNotFound is reported for a needed shared object that is not
	// present in any sysroot search path.
	ErrLibNotFound = errors.New("shared object not found in sysroot")
)

// CommandError is returned if an external command could not be started or
// exited with non-zero exit code. It carries the captured output for
// diagnostics.
type CommandError struct {
	Name   string
	Args   []string
	Err    error
	Stdout string
	Stderr string
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Name, e.Err)

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}
