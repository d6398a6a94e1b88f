// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scaffold_test

import (
	"path/filepath"
	"testing"

	"github.com/aibor/pibuild/internal/perms"
	"github.com/aibor/pibuild/internal/scaffold"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := "/rootfs"

	// Pre-existing file with wrong mode must be fixed.
	rcS := filepath.Join(root, "etc/init.d/rcS")
	require.NoError(t, fsys.MkdirAll(filepath.Dir(rcS), 0o755))
	require.NoError(t, afero.WriteFile(fsys, rcS, []byte("old"), 0o600))

	files := scaffold.EssentialFiles("raspberrypi", true)
	require.NoError(t, scaffold.WriteFiles(fsys, root, files))

	hostname, err := afero.ReadFile(fsys, filepath.Join(root, "etc/hostname"))
	require.NoError(t, err)
	assert.Equal(t, "raspberrypi", string(hostname))

	resolv, err := afero.ReadFile(fsys, filepath.Join(root, "etc/resolv.conf"))
	require.NoError(t, err)
	assert.Equal(t, "nameserver 8.8.8.8", string(resolv))

	assert.Equal(t, perms.Mode(0o755), mode(t, fsys, rcS))
	assert.Equal(t, perms.Mode(0o755), mode(t, fsys, filepath.Join(root, "init")))
	assert.Equal(t, perms.Data, mode(t, fsys, filepath.Join(root, "etc/shadow")))
}

func TestEssentialFiles(t *testing.T) {
	withoutInit := scaffold.EssentialFiles("pi", false)
	withInit := scaffold.EssentialFiles("pi", true)

	assert.Len(t, withInit, len(withoutInit)+1)
	assert.Equal(t, "init", withInit[len(withInit)-1].Path)

	for _, file := range withoutInit {
		if file.Path == "etc/init.d/rcS" {
			assert.Contains(t, file.Content, "#!/bin/sh")
		}
	}
}
