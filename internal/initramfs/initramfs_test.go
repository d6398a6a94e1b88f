// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/aibor/pibuild/internal/initramfs"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	outputDir := t.TempDir()

	cfg := initramfs.Config{
		OutputDir:   outputDir,
		Busybox:     writeBusybox(t, fakeBusybox),
		Devices:     devnode.InitramfsTable(),
		Archiver:    initramfs.Builtin,
		Compression: initramfs.Gzip,
	}

	path, warnings, err := initramfs.Build(t.Context(), cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "initramfs.gz"), path)

	// Missing sysroot is always reported.
	assert.NotEmpty(t, warnings)

	file, err := os.Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = file.Close() })

	reader, err := gzip.NewReader(file)
	require.NoError(t, err)

	headers := readArchive(t, reader)

	for _, name := range []string{"init", "bin/busybox", "bin/applet", "sbin/applet", "dev/console"} {
		assert.Contains(t, headers, name)
	}

	staging, err := filepath.Glob(filepath.Join(outputDir, "initramfs_staging_*"))
	require.NoError(t, err)
	assert.Empty(t, staging, "staging dir must be removed")
}

func TestBuildFailure(t *testing.T) {
	t.Run("missing busybox", func(t *testing.T) {
		_, _, err := initramfs.Build(t.Context(), initramfs.Config{
			OutputDir: t.TempDir(),
			Busybox:   "/nonexistent/busybox",
		})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown compression", func(t *testing.T) {
		outputDir := t.TempDir()

		_, _, err := initramfs.Build(t.Context(), initramfs.Config{
			OutputDir:   outputDir,
			Busybox:     writeBusybox(t, fakeBusybox),
			Archiver:    initramfs.Builtin,
			Compression: "lz4",
		})
		require.ErrorIs(t, err, initramfs.ErrUnknownCompression)

		entries, err := os.ReadDir(outputDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "archive and staging dir must be removed")
	})
}
