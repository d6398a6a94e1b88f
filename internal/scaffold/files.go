// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scaffold

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aibor/pibuild/internal/perms"
	"github.com/spf13/afero"
)

// File is a file with fixed content in the root filesystem.
type File struct {
	// Path relative to the root.
	Path    string
	Content string
	Mode    perms.Mode
}

const fstab = `# <file system> <mount point> <type> <options> <dump> <pass>
proc            /proc           proc    defaults        0       0
sysfs           /sys            sysfs   defaults        0       0
tmpfs           /tmp            tmpfs   defaults        0       0
`

const inittab = `# /etc/inittab for busybox init
::sysinit:/etc/init.d/rcS
::respawn:-/bin/sh
::ctrlaltdel:/sbin/reboot
::shutdown:/bin/sync
::shutdown:/sbin/poweroff
`

const rcS = `#!/bin/sh
# /etc/init.d/rcS

/bin/mount -t proc proc /proc
/bin/mount -t sysfs sysfs /sys
/bin/mount -t devtmpfs devtmpfs /dev

/sbin/mdev -s

/sbin/ifconfig lo 127.0.0.1 up
`

const profile = `# /etc/profile
export PATH=/bin:/sbin:/usr/bin:/usr/sbin:/usr/local/bin:/usr/local/sbin
PS1='\u@\h:\w\$ '
`

// rootInit is used when the kernel boots the root filesystem directly with
// init=/init.
const rootInit = `#!/bin/sh
exec /sbin/init "$@"
`

// EssentialFiles returns the configuration files a BusyBox init based system
// needs to boot to a shell. If withInit is true, an /init script handing
// over to /sbin/init is added.
func EssentialFiles(hostname string, withInit bool) []File {
	files := []File{
		{Path: "etc/fstab", Content: fstab, Mode: perms.Data},
		{Path: "etc/inittab", Content: inittab, Mode: perms.Data},
		{Path: "etc/init.d/rcS", Content: rcS, Mode: perms.Executable},
		{Path: "etc/profile", Content: profile, Mode: perms.Data},
		{Path: "etc/hostname", Content: hostname, Mode: perms.Data},
		{Path: "etc/resolv.conf", Content: "nameserver 8.8.8.8", Mode: perms.Data},
		{
			Path:    "etc/passwd",
			Content: "root:x:0:0:root:/root:/bin/sh\npi:x:1000:1000:Linux User,,,:/home/pi:/bin/sh\n",
			Mode:    perms.Data,
		},
		{Path: "etc/group", Content: "root:x:0:\npi:x:1000:\n", Mode: perms.Data},
		{
			Path:    "etc/shadow",
			Content: "root:*:1:0:99999:7:::\npi:*:1:0:99999:7:::\n",
			Mode:    perms.Data,
		},
	}

	if withInit {
		files = append(files, File{Path: "init", Content: rootInit, Mode: perms.Executable})
	}

	return files
}

// WriteFiles writes the files below root. Existing files are overwritten.
func WriteFiles(fsys afero.Fs, root string, files []File) error {
	for _, file := range files {
		path := filepath.Join(root, file.Path)

		if err := fsys.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
			return fmt.Errorf("create parent of %s: %w", file.Path, err)
		}

		err := afero.WriteFile(fsys, path, []byte(file.Content), file.Mode.FileMode())
		if err != nil {
			return fmt.Errorf("write %s: %w", file.Path, err)
		}

		// Existing files keep their mode on write.
		if err := fsys.Chmod(path, file.Mode.FileMode()); err != nil {
			return fmt.Errorf("chmod %s: %w", file.Path, err)
		}
	}

	slog.Info("Wrote essential files",
		slog.String("root", root),
		slog.Int("count", len(files)),
	)

	return nil
}
