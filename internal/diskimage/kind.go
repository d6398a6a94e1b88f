// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package diskimage

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned for filesystem kinds other than [Ext4] and
// [VFAT].
var ErrUnknownKind = errors.New("unknown filesystem kind")

// Kind is the filesystem created in the image.
type Kind string

// Supported filesystem kinds.
const (
	// Ext4 is used for the root filesystem.
	Ext4 Kind = "ext4"
	// VFAT is FAT32, used for the boot partition the firmware reads.
	VFAT Kind = "vfat"
)

// mountPrefix is the name prefix of the temporary mount point.
func (k Kind) mountPrefix() string {
	switch k {
	case VFAT:
		return "bootfs_mount_"
	default:
		return "rootfs_mount_"
	}
}

func (k Kind) mkfsArgs(image, label string) (string, []string, error) {
	switch k {
	case Ext4:
		args := []string{"-F"}
		if label != "" {
			args = append(args, "-L", label)
		}

		return "mkfs.ext4", append(args, image), nil
	case VFAT:
		args := []string{"-F", "32"}
		if label != "" {
			args = append(args, "-n", label)
		}

		return "mkfs.vfat", append(args, image), nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
}

// rsyncArgs returns the rsync options. FAT can not store owners, modes and
// symbolic links, so links are dereferenced and only times are kept.
func (k Kind) rsyncArgs() []string {
	if k == VFAT {
		return []string{"-rtL", "--modify-window=1", "--info=progress2"}
	}

	return []string{"-a", "--info=progress2"}
}
