// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package initramfs

import (
	"io"
	"io/fs"

	"github.com/aibor/pibuild/internal/devnode"
)

// MockEntry is a single entry recorded by [MockWriter].
type MockEntry struct {
	Path   string
	Target string
	Mode   fs.FileMode
	Body   string
	Device devnode.Spec
}

// MockWriter is a [Writer] that records all entries.
type MockWriter struct {
	Entries []MockEntry
	Err     error
}

func (m *MockWriter) WriteRegular(path string, source fs.File, mode fs.FileMode) error {
	body, err := io.ReadAll(source)
	if err != nil {
		return err
	}

	m.Entries = append(m.Entries, MockEntry{Path: path, Mode: mode, Body: string(body)})

	return m.Err
}

func (m *MockWriter) WriteDirectory(path string, mode fs.FileMode) error {
	m.Entries = append(m.Entries, MockEntry{Path: path, Mode: mode})

	return m.Err
}

func (m *MockWriter) WriteLink(path, target string) error {
	m.Entries = append(m.Entries, MockEntry{Path: path, Target: target, Mode: fs.ModeSymlink})

	return m.Err
}

func (m *MockWriter) WriteDevice(path string, spec devnode.Spec) error {
	m.Entries = append(m.Entries, MockEntry{Path: path, Mode: fs.ModeDevice, Device: spec})

	return m.Err
}

// Paths returns the paths of all recorded entries in order.
func (m *MockWriter) Paths() []string {
	paths := make([]string, 0, len(m.Entries))
	for _, entry := range m.Entries {
		paths = append(paths, entry.Path)
	}

	return paths
}
