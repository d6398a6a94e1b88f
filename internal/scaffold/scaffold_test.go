// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scaffold_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/pibuild/internal/perms"
	"github.com/aibor/pibuild/internal/scaffold"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mode(t *testing.T, fsys afero.Fs, path string) perms.Mode {
	t.Helper()

	info, err := fsys.Stat(path)
	require.NoError(t, err)

	return perms.ModeOf(info.Mode())
}

func TestBuild(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := "/out/rootfs"

	err := scaffold.Build(fsys, root, scaffold.DefaultDirs(), scaffold.DefaultOverrides())
	require.NoError(t, err)

	for _, dir := range scaffold.DefaultDirs() {
		exists, err := afero.DirExists(fsys, filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, exists, dir)
	}

	assert.Equal(t, perms.Mode(0o1777), mode(t, fsys, root+"/tmp"))
	assert.Equal(t, perms.Mode(0o1777), mode(t, fsys, root+"/var/tmp"))
	assert.Equal(t, perms.Mode(0o777), mode(t, fsys, root+"/var/log"))
	assert.Equal(t, perms.Mode(0o777), mode(t, fsys, root+"/var/run"))
	assert.Equal(t, perms.Mode(0o755), mode(t, fsys, root+"/home/pi"))
}

func TestBuildIdempotent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := "/out/rootfs"
	unrelated := filepath.Join(root, "etc", "keep")

	require.NoError(t, fsys.MkdirAll(filepath.Join(root, "etc"), 0o700))
	require.NoError(t, afero.WriteFile(fsys, unrelated, []byte("x"), 0o600))

	for range 2 {
		err := scaffold.Build(fsys, root, scaffold.DefaultDirs(), scaffold.DefaultOverrides())
		require.NoError(t, err)
	}

	assert.Equal(t, perms.Mode(0o600), mode(t, fsys, unrelated))
	assert.Equal(t, perms.Mode(0o700), mode(t, fsys, filepath.Join(root, "etc")))
}

func TestBuildFailsOnReadOnlyFs(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := scaffold.Build(fsys, "/rootfs", []string{"bin"}, nil)
	require.Error(t, err)
}

func TestBuildOnDisk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "rootfs")

	err := scaffold.Build(afero.NewOsFs(), root, scaffold.DefaultDirs(), scaffold.DefaultOverrides())
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "tmp"))
	require.NoError(t, err)
	assert.Equal(t, os.ModeSticky, info.Mode()&os.ModeSticky)
	assert.Equal(t, os.FileMode(0o777), info.Mode().Perm())
}
