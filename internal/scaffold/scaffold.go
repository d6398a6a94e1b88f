// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scaffold

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aibor/pibuild/internal/perms"
	"github.com/spf13/afero"
)

const defaultDirMode = 0o755

// DefaultDirs returns the directory layout of the root filesystem.
func DefaultDirs() []string {
	return []string{
		"bin", "sbin", "etc", "proc", "sys", "dev", "lib", "lib64",
		"home", "tmp", "var", "boot",
		"usr", "usr/bin", "usr/sbin", "usr/lib", "usr/local",
		"var/log", "var/run", "var/tmp", "var/lock",
		"mnt", "opt", "srv", "root", "home/pi",
	}
}

// DefaultOverrides returns the modes of the temp, log and run directories.
func DefaultOverrides() []perms.Override {
	return []perms.Override{
		{Path: "tmp", Mode: perms.StickyWorld},
		{Path: "var/tmp", Mode: perms.StickyWorld},
		{Path: "var/log", Mode: perms.WorldWrite},
		{Path: "var/run", Mode: perms.WorldWrite},
	}
}

// Build creates root and all dirs below it, including missing intermediate
// directories. Existing directories are left untouched. The overrides are
// applied afterwards.
//
// Build is idempotent. It fails only if a directory can not be created or
// an override can not be applied.
func Build(
	fsys afero.Fs,
	root string,
	dirs []string,
	overrides []perms.Override,
) error {
	if err := fsys.MkdirAll(root, defaultDirMode); err != nil {
		return fmt.Errorf("create root: %w", err)
	}

	created := 0

	for _, dir := range dirs {
		path := filepath.Join(root, dir)

		exists, err := afero.DirExists(fsys, path)
		if err != nil {
			return fmt.Errorf("check %s: %w", dir, err)
		}

		if exists {
			continue
		}

		if err := fsys.MkdirAll(path, defaultDirMode); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}

		created++
	}

	for _, override := range overrides {
		path := filepath.Join(root, override.Path)

		if err := fsys.Chmod(path, override.Mode.FileMode()); err != nil {
			return fmt.Errorf("chmod %s: %w", override.Path, err)
		}
	}

	slog.Info("Created directory scaffold",
		slog.String("root", root),
		slog.Int("created", created),
		slog.Int("total", len(dirs)),
	)

	return nil
}
