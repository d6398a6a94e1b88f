// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"os"
	"path/filepath"
	"testing"
)

// FakeTool writes an executable shell script with the given body into a
// temporary directory and prepends that directory to PATH for the duration
// of the test. It returns the directory.
func FakeTool(tb testing.TB, name, body string) string {
	tb.Helper()

	dir := tb.TempDir()
	script := "#!/bin/sh\n" + body + "\n"

	//nolint:gosec
	err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755)
	if err != nil {
		tb.Fatalf("write fake tool %s: %v", name, err)
	}

	tb.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return dir
}

// MustMkdirAll creates the given directories below root.
func MustMkdirAll(tb testing.TB, root string, dirs ...string) {
	tb.Helper()

	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", dir, err)
		}
	}
}

// MustWriteFile writes a file below root, creating parent directories.
func MustWriteFile(tb testing.TB, root, name, content string) string {
	tb.Helper()

	path := filepath.Join(root, name)
	MustMkdirAll(tb, root, filepath.Dir(name))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}

	return path
}
