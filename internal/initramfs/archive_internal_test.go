// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArchive(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin", "busybox"), []byte("bb"), 0o755))
	require.NoError(t, os.Symlink("busybox", filepath.Join(root, "bin", "sh")))

	console := devnode.Spec{Name: "console", Major: 5, Minor: 1, Kind: devnode.Char}

	tests := []struct {
		name          string
		listing       string
		devices       []devnode.Spec
		expectedPaths []string
	}{
		{
			name:          "tree",
			listing:       ".\x00./bin\x00./bin/busybox\x00./bin/sh\x00",
			expectedPaths: []string{".", "bin", "bin/busybox", "bin/sh"},
		},
		{
			name:          "missing devices",
			listing:       ".\x00./bin\x00",
			devices:       []devnode.Spec{console},
			expectedPaths: []string{".", "bin", "dev", "dev/console"},
		},
		{
			name:          "unterminated last entry",
			listing:       "./bin/busybox",
			expectedPaths: []string{"bin/busybox"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &MockWriter{}

			err := writeArchive(root, strings.NewReader(tt.listing), writer, tt.devices)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedPaths, writer.Paths())
		})
	}

	t.Run("entry content", func(t *testing.T) {
		writer := &MockWriter{}

		err := writeArchive(root, strings.NewReader("./bin/busybox\x00./bin/sh\x00"), writer, nil)
		require.NoError(t, err)
		require.Len(t, writer.Entries, 2)

		assert.Equal(t, "bb", writer.Entries[0].Body)
		assert.Equal(t, fs.FileMode(0o755), writer.Entries[0].Mode.Perm())
		assert.Equal(t, "busybox", writer.Entries[1].Target)
	})

	t.Run("duplicate devices", func(t *testing.T) {
		writer := &MockWriter{}

		err := writeArchive(root, strings.NewReader("./bin\x00"), writer, []devnode.Spec{console, console})
		require.NoError(t, err)

		assert.Equal(t, []string{"bin", "dev", "dev/console"}, writer.Paths())
		assert.Equal(t, console, writer.Entries[2].Device)
	})

	t.Run("missing file", func(t *testing.T) {
		err := writeArchive(root, strings.NewReader("./missing\x00"), &MockWriter{}, nil)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("writer error", func(t *testing.T) {
		errWrite := errors.New("write failed")

		err := writeArchive(root, strings.NewReader("./bin\x00"), &MockWriter{Err: errWrite}, nil)
		require.ErrorIs(t, err, errWrite)
	})
}
