// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package kconfig rewrites Kconfig style build configuration files.
//
// A configuration line has either the enabled form "CONFIG_<NAME>=<value>"
// or the disabled form "# CONFIG_<NAME> is not set".
package kconfig

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const keyPrefix = "CONFIG_"

// Key returns the configuration key for a feature name, like
// "CONFIG_FEATURE_MOUNT_NFS" for "feature_mount_nfs".
func Key(feature string) string {
	return keyPrefix + strings.ToUpper(feature)
}

// DisabledLine returns the line that marks the feature as disabled.
func DisabledLine(feature string) string {
	return "# " + Key(feature) + " is not set"
}

// Result lists what happened to each requested feature. Features are
// reported as spelled by the caller.
type Result struct {
	// Disabled are features that were enabled and are now disabled.
	Disabled []string
	// AlreadyOff are features that were disabled before.
	AlreadyOff []string
	// Missing are features with neither an enabled "y" or "m" line nor a
	// disabled line in the file.
	Missing []string
}

// Changed reports whether the file content was modified.
func (r Result) Changed() bool {
	return len(r.Disabled) > 0
}

// Patch disables the given features in the configuration file at path.
//
// Lines with the enabled form and a "y" or "m" value are rewritten into the
// disabled form. Each line is matched against the features in order and the
// first match wins. All other lines are passed through unmodified. The file
// is replaced with the result even if nothing changed, so patching twice
// yields the identical file.
func Patch(fsys afero.Fs, path string, features []string) (Result, error) {
	var result Result

	info, err := fsys.Stat(path)
	if err != nil {
		return result, fmt.Errorf("stat: %w", err)
	}

	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		return result, fmt.Errorf("read: %w", err)
	}

	features = normalize(features)
	seen := make(map[string]bool, len(features))

	lines := strings.SplitAfter(string(content), "\n")

	for idx, line := range lines {
		trimmed := strings.TrimSpace(line)

		for _, feature := range features {
			key := Key(feature)

			if strings.HasPrefix(trimmed, key+"=") {
				if isEnabled(trimmed) {
					lines[idx] = DisabledLine(feature) + lineEnding(line)
					result.Disabled = append(result.Disabled, feature)
					seen[feature] = true

					slog.Info("Disabled feature", slog.String("key", key))
				}

				break
			}

			if trimmed == DisabledLine(feature) {
				result.AlreadyOff = append(result.AlreadyOff, feature)
				seen[feature] = true

				slog.Info("Feature already disabled", slog.String("key", key))

				break
			}
		}
	}

	for _, feature := range features {
		if !seen[feature] {
			result.Missing = append(result.Missing, feature)

			slog.Debug("Feature not present in config",
				slog.String("key", Key(feature)))
		}
	}

	err = writeFileAtomic(fsys, path, []byte(strings.Join(lines, "")), info.Mode().Perm())
	if err != nil {
		return result, err
	}

	return result, nil
}

// normalize trims and deduplicates the feature names keeping the order and
// the first spelling. Names are compared by their configuration key.
func normalize(features []string) []string {
	normalized := make([]string, 0, len(features))
	keys := make(map[string]bool, len(features))

	for _, feature := range features {
		feature = strings.TrimSpace(feature)
		if feature == "" || keys[Key(feature)] {
			continue
		}

		keys[Key(feature)] = true
		normalized = append(normalized, feature)
	}

	return normalized
}

func isEnabled(line string) bool {
	return strings.HasSuffix(line, "=y") || strings.HasSuffix(line, "=m")
}

func lineEnding(line string) string {
	trimmed := strings.TrimRight(line, "\r\n")
	return line[len(trimmed):]
}

// writeFileAtomic writes into a temporary sibling file and renames it over
// the original, so readers never see a partially written configuration.
func writeFileAtomic(fsys afero.Fs, path string, data []byte, mode fs.FileMode) error {
	dir, name := filepath.Split(path)

	tmp, err := afero.TempFile(fsys, dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = fsys.Chmod(tmpName, mode)
	}

	if err == nil {
		err = fsys.Rename(tmpName, path)
	}

	if err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
