// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs_test

import (
	"testing"

	"github.com/aibor/pibuild/internal/initramfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitScript(t *testing.T) {
	tests := []struct {
		name       string
		rootDevice string
		expected   string
	}{
		{
			name:     "default",
			expected: "/bin/mount -o ro /dev/mmcblk0p2 /mnt\n",
		},
		{
			name:       "custom",
			rootDevice: "/dev/sda2",
			expected:   "/bin/mount -o ro /dev/sda2 /mnt\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := initramfs.InitScript(tt.rootDevice)
			require.NoError(t, err)

			assert.Contains(t, script, tt.expected)
			assert.Regexp(t, "^#!/bin/sh\n", script)
			assert.Contains(t, script, "/bin/mount -t devtmpfs devtmpfs /dev\n")
			assert.Contains(t, script, "if [ $? -ne 0 ]; then\n")
			assert.Contains(t, script, "exec /bin/busybox switch_root /mnt /sbin/init\n")
		})
	}
}
