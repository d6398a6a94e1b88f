// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"fmt"
	"slices"
)

// Stage is a single step of the build.
type Stage string

// Build stages in execution order.
const (
	// StageFetch downloads and extracts the package source.
	StageFetch Stage = "fetch"
	// StageScaffold creates the root filesystem directory tree.
	StageScaffold Stage = "scaffold"
	// StageBuild configures, compiles and installs the package into the
	// root filesystem.
	StageBuild Stage = "build"
	// StageRootfs adds the essential files and device nodes to the root
	// filesystem and normalizes the permissions.
	StageRootfs Stage = "rootfs"
	// StageRootfsImage packs the root filesystem into an ext4 image.
	StageRootfsImage Stage = "rootfs-image"
	// StageInitramfs creates the initramfs archive.
	StageInitramfs Stage = "initramfs"
	// StageFirmware clones or updates the firmware repository.
	StageFirmware Stage = "firmware"
	// StageBootfs packs the firmware, boot configuration and initramfs
	// into a FAT32 image.
	StageBootfs Stage = "bootfs"
	// StageManifest writes the artifact manifest.
	StageManifest Stage = "manifest"
)

// Stages returns all stages in execution order.
func Stages() []Stage {
	return []Stage{
		StageFetch,
		StageScaffold,
		StageBuild,
		StageRootfs,
		StageRootfsImage,
		StageInitramfs,
		StageFirmware,
		StageBootfs,
		StageManifest,
	}
}

// RequiresRoot returns true for stages that mount images.
func (s Stage) RequiresRoot() bool {
	return s == StageRootfsImage || s == StageBootfs
}

func (s *Stage) String() string {
	return string(*s)
}

// Set implements [github.com/spf13/pflag.Value].
func (s *Stage) Set(value string) error {
	if !slices.Contains(Stages(), Stage(value)) {
		return fmt.Errorf("%w: %s", ErrUnknownStage, value)
	}

	*s = Stage(value)

	return nil
}

// Type implements [github.com/spf13/pflag.Value].
func (*Stage) Type() string {
	return "stage"
}
