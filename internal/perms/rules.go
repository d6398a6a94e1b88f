// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package perms

import (
	"errors"
	"path/filepath"
	"slices"
)

// ErrInvalidMode is returned for modes with bits beyond the permission and
// special bits.
var ErrInvalidMode = errors.New("invalid mode")

// Override pins the mode of a directory relative to the tree root.
type Override struct {
	Path string `yaml:"path"`
	Mode Mode   `yaml:"mode"`
}

// Rules is the permission table applied to an assembled tree.
type Rules struct {
	// ExecDirs are directory base names whose direct children are
	// executables, at any depth.
	ExecDirs []string `yaml:"exec_dirs"`
	// ExecFiles are paths relative to the tree root that are executable
	// regardless of their content.
	ExecFiles []string `yaml:"exec_files"`
	// Overrides are applied after the walk. The general directory pass
	// leaves their paths alone.
	Overrides []Override `yaml:"overrides"`
}

// DefaultRules returns the rules for a BusyBox based root filesystem.
func DefaultRules() Rules {
	return Rules{
		ExecDirs:  []string{"bin", "sbin"},
		ExecFiles: []string{"etc/init.d/rcS", "init"},
		Overrides: []Override{
			{Path: "tmp", Mode: StickyWorld},
			{Path: "var/tmp", Mode: StickyWorld},
			{Path: "var/log", Mode: WorldWrite},
			{Path: "var/run", Mode: WorldWrite},
			{Path: "var/lock", Mode: WorldWrite},
			{Path: "dev", Mode: Executable},
			{Path: ".", Mode: Executable},
		},
	}
}

// isSpecialDir reports whether the directory has an override.
func (r Rules) isSpecialDir(rel string) bool {
	return slices.ContainsFunc(r.Overrides, func(o Override) bool {
		return filepath.Clean(o.Path) == rel
	})
}

// isExecPath reports whether the file is executable by its location.
func (r Rules) isExecPath(rel string) bool {
	if slices.Contains(r.ExecFiles, rel) {
		return true
	}

	parent := filepath.Base(filepath.Dir(rel))

	return parent != "." && slices.Contains(r.ExecDirs, parent)
}
