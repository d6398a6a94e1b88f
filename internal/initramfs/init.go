// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultRootDevice is the partition of the real root filesystem.
const DefaultRootDevice = "/dev/mmcblk0p2"

var initTemplate = template.Must(template.New("init").Parse(`#!/bin/sh
/bin/mount -t proc proc /proc
/bin/mount -t sysfs sysfs /sys
/bin/mount -t devtmpfs devtmpfs /dev

echo "Populating /dev with mdev..."
/sbin/mdev -s

echo "Attempting to mount root filesystem {{ .RootDevice }}..."
/bin/mount -o ro {{ .RootDevice }} /mnt

if [ $? -ne 0 ]; then
    echo "Failed to mount root filesystem. Dropping to a shell."
    /bin/sh
else
    echo "Root filesystem mounted successfully. Switching root..."
    exec /bin/busybox switch_root /mnt /sbin/init
fi

echo "switch_root failed. Dropping to a shell."
/bin/sh
`))

// InitScript renders the /init script. It mounts the pseudo filesystems,
// populates /dev, mounts the root device read-only and hands over to its
// /sbin/init. If anything fails, it falls back to an interactive shell.
func InitScript(rootDevice string) (string, error) {
	if rootDevice == "" {
		rootDevice = DefaultRootDevice
	}

	var script strings.Builder

	err := initTemplate.Execute(&script, struct{ RootDevice string }{rootDevice})
	if err != nil {
		return "", fmt.Errorf("render init script: %w", err)
	}

	return script.String(), nil
}
