// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package perms

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/aibor/pibuild/internal/report"
	"github.com/spf13/afero"
)

const stage = "perms"

var shebang = []byte("#!")

// Apply walks the tree at root and sets the modes according to the rules.
//
// Directories are set to [Executable] mode in the first pass, except those
// with overrides. Regular files are classified by [Classify] in the second
// pass. Overrides are applied last. Symbolic links and special files are
// left alone. Failures for single items are returned as warnings, so a
// single unreadable file does not fail the whole tree.
func Apply(fsys afero.Fs, root string, rules Rules) report.Warnings {
	var (
		warnings report.Warnings
		files    []string
	)

	root = filepath.Clean(root)

	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			warnings.Add(stage, path, err)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			warnings.Add(stage, path, err)
			return nil
		}

		switch {
		case info.IsDir():
			if !rules.isSpecialDir(rel) {
				chmod(fsys, path, Executable, &warnings)
			}
		case info.Mode().IsRegular():
			files = append(files, rel)
		}

		return nil
	})
	if err != nil {
		warnings.Add(stage, root, err)
	}

	for _, rel := range files {
		path := filepath.Join(root, rel)

		mode, err := Classify(fsys, root, rel, rules)
		if err != nil {
			warnings.Add(stage, path, err)
			continue
		}

		chmod(fsys, path, mode, &warnings)
	}

	for _, override := range rules.Overrides {
		path := filepath.Join(root, override.Path)

		exists, err := afero.DirExists(fsys, path)
		if err != nil || !exists {
			slog.Debug("Skip override for missing directory",
				slog.String("path", path))

			continue
		}

		chmod(fsys, path, override.Mode, &warnings)
	}

	slog.Info("Applied permissions",
		slog.String("root", root),
		slog.Int("files", len(files)),
		slog.Int("warnings", len(warnings)),
	)

	return warnings
}

// Classify returns the mode for the regular file at rel below root.
//
// Files located directly in one of the [Rules.ExecDirs], files listed in
// [Rules.ExecFiles] and files starting with a shebang line are [Executable].
// Everything else is [Data].
func Classify(fsys afero.Fs, root, rel string, rules Rules) (Mode, error) {
	if rules.isExecPath(rel) {
		return Executable, nil
	}

	hasShebang, err := startsWithShebang(fsys, filepath.Join(root, rel))
	if err != nil {
		return 0, err
	}

	if hasShebang {
		return Executable, nil
	}

	return Data, nil
}

func startsWithShebang(fsys afero.Fs, path string) (bool, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return false, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	head := make([]byte, len(shebang))

	_, err = io.ReadFull(file, head)
	if err != nil {
		// Shorter than a shebang.
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}

		return false, fmt.Errorf("read: %w", err)
	}

	return bytes.Equal(head, shebang), nil
}

func chmod(fsys afero.Fs, path string, mode Mode, warnings *report.Warnings) {
	err := fsys.Chmod(path, mode.FileMode())
	if err != nil {
		warnings.Add(stage, path, err)
	}
}
