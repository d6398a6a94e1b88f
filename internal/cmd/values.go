// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aibor/pibuild/internal/sys"
)

// FilePath is a flag value that is made absolute on set.
type FilePath string

func (f *FilePath) String() string {
	return string(*f)
}

// Set sets the absolute path of s. Empty paths are rejected with
// [sys.ErrEmptyPath].
func (f *FilePath) Set(s string) error {
	if s == "" {
		return sys.ErrEmptyPath
	}

	path, err := filepath.Abs(s)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}

	*f = FilePath(path)

	return nil
}

func (*FilePath) Type() string {
	return "path"
}

// ValidateFilePath returns an error if name does not exist or is not a
// regular file.
func ValidateFilePath(name string) error {
	stat, err := os.Stat(name)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if !stat.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, name)
	}

	return nil
}

// LimitedIntValue is a flag value accepting integers in a closed range.
// Bounds of 0 are not checked.
type LimitedIntValue struct {
	Value        *int
	Lower, Upper int
}

func (u *LimitedIntValue) String() string {
	if u.Value == nil {
		return "0"
	}

	return strconv.Itoa(*u.Value)
}

func (u *LimitedIntValue) Set(s string) error {
	value, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if u.Lower != 0 && value < u.Lower {
		return fmt.Errorf("%d < %d: %w", value, u.Lower, ErrValueOutOfRange)
	}

	if u.Upper != 0 && value > u.Upper {
		return fmt.Errorf("%d > %d: %w", value, u.Upper, ErrValueOutOfRange)
	}

	*u.Value = value

	return nil
}

func (*LimitedIntValue) Type() string {
	return "int"
}
