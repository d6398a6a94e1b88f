// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build integration

package diskimage_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aibor/pibuild/internal/diskimage"
	"github.com/aibor/pibuild/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func requireTools(t *testing.T, tools ...string) {
	t.Helper()

	if err := sys.RequireRoot(); err != nil {
		t.Skip("requires root")
	}

	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not installed", tool)
		}
	}
}

func mountReadOnly(t *testing.T, image string, kind diskimage.Kind) string {
	t.Helper()

	mountPoint := t.TempDir()

	cmd := sys.Command{
		Name: "mount",
		Args: []string{"-o", "loop,ro", "-t", string(kind), image, mountPoint},
	}

	_, err := cmd.Run(t.Context())
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, unix.Unmount(mountPoint, 0))
	})

	return mountPoint
}

func assertNoMountEntry(t *testing.T, image string) {
	t.Helper()

	mounts, err := os.ReadFile("/proc/self/mountinfo")
	require.NoError(t, err)

	assert.NotContains(t, string(mounts), "_mount_", "stale mount of "+image)
}

func TestBuildExt4(t *testing.T) {
	requireTools(t, "mkfs.ext4", "rsync", "mount")

	source := t.TempDir()
	sh := sys.MustWriteFile(t, source, "bin/sh", "#!/bin/true\n")
	require.NoError(t, os.Chmod(sh, 0o755))
	sys.MustWriteFile(t, source, "etc/hostname", "raspberrypi")
	require.NoError(t, os.Symlink("sh", filepath.Join(source, "bin", "ash")))

	tempDir := t.TempDir()
	spec := diskimage.Spec{
		Source:  source,
		Output:  filepath.Join(t.TempDir(), "rootfs.ext4"),
		Kind:    diskimage.Ext4,
		SizeMB:  64,
		TempDir: tempDir,
	}

	warnings, err := diskimage.Build(t.Context(), spec)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	info, err := os.Stat(spec.Output)
	require.NoError(t, err)
	assert.EqualValues(t, 64<<20, info.Size())

	leftovers, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "mount point removed")
	assertNoMountEntry(t, spec.Output)

	mountPoint := mountReadOnly(t, spec.Output, diskimage.Ext4)

	shInfo, err := os.Stat(filepath.Join(mountPoint, "bin", "sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), shInfo.Mode().Perm())

	hostname, err := os.ReadFile(filepath.Join(mountPoint, "etc", "hostname"))
	require.NoError(t, err)
	assert.Equal(t, "raspberrypi", string(hostname))

	target, err := os.Readlink(filepath.Join(mountPoint, "bin", "ash"))
	require.NoError(t, err)
	assert.Equal(t, "sh", target)
}

func TestBuildVFATWithFiles(t *testing.T) {
	requireTools(t, "mkfs.vfat", "rsync", "mount")

	source := t.TempDir()
	sys.MustWriteFile(t, source, "start4.elf", "firmware")
	sys.MustWriteFile(t, source, "overlays/README", "overlays")

	spec := diskimage.Spec{
		Source: source,
		Output: filepath.Join(t.TempDir(), "bootfs.vfat"),
		Kind:   diskimage.VFAT,
		SizeMB: 64,
		Label:  "BOOT",
		Files: map[string]string{
			"cmdline.txt": "console=tty1 root=/dev/mmcblk0p2\n",
			"config.txt":  "arm_64bit=1\n",
		},
		Include: map[string]string{
			"initramfs.gz": sys.MustWriteFile(t, t.TempDir(), "initramfs.gz", "archive"),
		},
		TempDir: t.TempDir(),
	}

	warnings, err := diskimage.Build(t.Context(), spec)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	mountPoint := mountReadOnly(t, spec.Output, diskimage.VFAT)

	for name, content := range map[string]string{
		"start4.elf":      "firmware",
		"overlays/README": "overlays",
		"cmdline.txt":     spec.Files["cmdline.txt"],
		"config.txt":      spec.Files["config.txt"],
		"initramfs.gz":    "archive",
	} {
		data, err := os.ReadFile(filepath.Join(mountPoint, name))
		if assert.NoError(t, err, name) {
			assert.Equal(t, content, string(data), name)
		}
	}
}

func TestBuildCleansUpOnFailure(t *testing.T) {
	requireTools(t, "mkfs.ext4", "rsync", "mount")

	tempDir := t.TempDir()
	spec := diskimage.Spec{
		Source:  t.TempDir(),
		Output:  filepath.Join(t.TempDir(), "rootfs.ext4"),
		Kind:    diskimage.Ext4,
		SizeMB:  64,
		TempDir: tempDir,
		Files: map[string]string{
			"missing/dir/file": "unwritable",
		},
	}

	_, err := diskimage.Build(t.Context(), spec)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing/dir/file"), err.Error())

	leftovers, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "mount point removed")
	assertNoMountEntry(t, spec.Output)
}
