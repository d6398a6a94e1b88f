// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/aibor/pibuild/internal/diskimage"
	"github.com/aibor/pibuild/internal/initramfs"
	"github.com/aibor/pibuild/internal/manifest"
	"github.com/aibor/pibuild/internal/perms"
	"github.com/aibor/pibuild/internal/report"
	"github.com/aibor/pibuild/internal/scaffold"
	"github.com/aibor/pibuild/internal/sys"
)

const (
	rootfsLabel = "rootfs"
	bootfsLabel = "BOOT"
)

// scaffold creates the directory layout of the root filesystem. Only
// overrides for directories that are part of the layout are applied.
func (p *Pipeline) scaffold(_ context.Context) (report.Warnings, error) {
	dirs := p.Profile.ScaffoldDirs

	var overrides []perms.Override

	for _, override := range scaffold.DefaultOverrides() {
		if slices.Contains(dirs, override.Path) {
			overrides = append(overrides, override)
		}
	}

	return nil, scaffold.Build(p.fs, p.Profile.RootfsDir(), dirs, overrides)
}

// rootfs completes the installed tree with configuration files, device
// nodes and permissions.
func (p *Pipeline) rootfs(_ context.Context) (report.Warnings, error) {
	var warnings report.Warnings

	root := p.Profile.RootfsDir()

	if !dirExists(root) {
		return nil, fmt.Errorf("%w: root filesystem %s", ErrMissingInput, root)
	}

	files := scaffold.EssentialFiles(p.Profile.Hostname, p.Profile.RootInit)
	if err := scaffold.WriteFiles(p.fs, root, files); err != nil {
		return nil, err
	}

	devDir := filepath.Join(root, "dev")
	if err := os.MkdirAll(devDir, dirMode); err != nil {
		return nil, fmt.Errorf("create dev dir: %w", err)
	}

	warnings.Append(devnode.Create(devDir, p.Profile.DeviceNodes))
	warnings.Append(perms.Apply(p.fs, root, p.Profile.Permissions))

	return warnings, nil
}

func (p *Pipeline) rootfsImage(ctx context.Context) (report.Warnings, error) {
	return diskimage.Build(ctx, diskimage.Spec{
		Source:   p.Profile.RootfsDir(),
		Output:   p.Profile.RootfsImage(),
		Kind:     diskimage.Ext4,
		SizeMB:   p.Profile.RootfsSizeMB,
		Label:    rootfsLabel,
		TempDir:  p.Profile.BuildDir,
		Progress: p.Progress,
	})
}

func (p *Pipeline) initramfsConfig() initramfs.Config {
	return initramfs.Config{
		OutputDir:   p.Profile.BuildDir,
		Busybox:     filepath.Join(p.Profile.RootfsDir(), "bin", "busybox"),
		AppletRoot:  p.Profile.RootfsDir(),
		Resolver:    p.Profile.Resolver(),
		Devices:     p.Profile.InitramfsDeviceNodes,
		RootDevice:  p.Profile.RootDevice,
		Archiver:    p.Profile.Archiver,
		Compression: p.Profile.Compression,
	}
}

func (p *Pipeline) initramfs(ctx context.Context) (report.Warnings, error) {
	_, warnings, err := initramfs.Build(ctx, p.initramfsConfig())
	return warnings, err
}

// firmware clones the firmware repository or updates an existing checkout.
func (p *Pipeline) firmware(ctx context.Context) (report.Warnings, error) {
	var warnings report.Warnings

	dir := p.Profile.FirmwareDir()

	if dirExists(filepath.Join(dir, ".git")) {
		cmd := sys.Command{
			Name:   "git",
			Args:   []string{"-C", dir, "pull", "--ff-only"},
			Stream: p.Progress,
		}

		if _, err := cmd.Run(ctx); err != nil {
			warnings.AddHint(string(StageFirmware), dir, "using existing checkout", err)
		}
	} else {
		args := []string{"clone", "--depth", "1"}
		if p.Profile.FirmwareRef != "" {
			args = append(args, "--branch", p.Profile.FirmwareRef)
		}

		cmd := sys.Command{
			Name:   "git",
			Args:   append(args, p.Profile.FirmwareRepo, dir),
			Stream: p.Progress,
		}

		if _, err := cmd.Run(ctx); err != nil {
			return nil, fmt.Errorf("clone firmware: %w", err)
		}
	}

	if !dirExists(filepath.Join(dir, "boot")) {
		return warnings, fmt.Errorf("%w: %s has no boot directory", ErrMissingInput, dir)
	}

	return warnings, nil
}

// bootfs creates the boot partition image from the firmware boot directory,
// the rendered boot configuration and the initramfs archive.
func (p *Pipeline) bootfs(ctx context.Context) (report.Warnings, error) {
	var warnings report.Warnings

	files, err := p.Profile.BootFiles()
	if err != nil {
		return nil, err
	}

	include := map[string]string{}

	archive := p.initramfsConfig().OutputPath()
	if fileExists(archive) {
		include[p.Profile.InitramfsName()] = archive
	} else {
		warnings.AddHint(string(StageBootfs), archive, "run the initramfs stage first",
			ErrMissingInput)
	}

	imageWarnings, err := diskimage.Build(ctx, diskimage.Spec{
		Source:   filepath.Join(p.Profile.FirmwareDir(), "boot"),
		Output:   p.Profile.BootfsImage(),
		Kind:     diskimage.VFAT,
		SizeMB:   p.Profile.BootfsSizeMB,
		Label:    bootfsLabel,
		Files:    files,
		Include:  include,
		TempDir:  p.Profile.BuildDir,
		Progress: p.Progress,
	})
	warnings.Append(imageWarnings)

	return warnings, err
}

// manifest records digests of all artifacts present in the build directory.
func (p *Pipeline) manifest(_ context.Context) (report.Warnings, error) {
	mf := manifest.New(p.Profile.BusyboxVersion, string(p.Profile.Arch))

	artifacts := []string{
		p.Profile.RootfsImage(),
		p.Profile.BootfsImage(),
		p.initramfsConfig().OutputPath(),
	}

	for _, path := range artifacts {
		err := mf.Add("", path)
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("Skipping missing artifact", slog.String("path", path))
			continue
		}

		if err != nil {
			return nil, err
		}
	}

	for _, warning := range p.warnings {
		mf.Warnings = append(mf.Warnings, warning.Error())
	}

	if err := mf.Write(p.Profile.ManifestPath()); err != nil {
		return nil, err
	}

	slog.Info("Wrote manifest",
		slog.String("path", p.Profile.ManifestPath()),
		slog.String("build_id", mf.BuildID),
		slog.Int("artifacts", len(mf.Artifacts)),
	)

	return nil, nil
}
