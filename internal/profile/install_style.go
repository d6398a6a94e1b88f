// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"fmt"
	"path/filepath"
)

// InstallStyle selects how the built package is told about the install
// destination.
type InstallStyle string

// Supported install styles.
const (
	// InstallPrefix passes the absolute root filesystem path as
	// CONFIG_PREFIX.
	InstallPrefix InstallStyle = "prefix"
	// InstallDir passes the root filesystem path as INSTALL_DIR, relative to
	// the source directory.
	InstallDir InstallStyle = "install-dir"
)

func (s *InstallStyle) String() string {
	return string(*s)
}

// Set implements [github.com/spf13/pflag.Value].
func (s *InstallStyle) Set(value string) error {
	switch InstallStyle(value) {
	case InstallPrefix, InstallDir:
		*s = InstallStyle(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownInstallStyle, value)
	}

	return nil
}

// Type implements [github.com/spf13/pflag.Value].
func (*InstallStyle) Type() string {
	return "install-style"
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *InstallStyle) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// MakeArgs returns the make arguments for installing into rootfs from the
// source directory srcDir.
func (s InstallStyle) MakeArgs(srcDir, rootfs string) ([]string, error) {
	switch s {
	case InstallPrefix:
		abs, err := filepath.Abs(rootfs)
		if err != nil {
			return nil, fmt.Errorf("absolute rootfs path: %w", err)
		}

		return []string{"CONFIG_PREFIX=" + abs, "install"}, nil
	case InstallDir:
		absSrc, err := filepath.Abs(srcDir)
		if err != nil {
			return nil, fmt.Errorf("absolute source path: %w", err)
		}

		absRootfs, err := filepath.Abs(rootfs)
		if err != nil {
			return nil, fmt.Errorf("absolute rootfs path: %w", err)
		}

		rel, err := filepath.Rel(absSrc, absRootfs)
		if err != nil {
			return nil, fmt.Errorf("relative rootfs path: %w", err)
		}

		return []string{"INSTALL_DIR=" + rel, "install"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstallStyle, s)
	}
}
