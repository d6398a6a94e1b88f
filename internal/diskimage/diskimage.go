// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package diskimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/aibor/pibuild/internal/report"
	"github.com/aibor/pibuild/internal/sys"
	"golang.org/x/sys/unix"
)

const stage = "diskimage"

var (
	// ErrInvalidSize is returned if the image size is not positive.
	ErrInvalidSize = errors.New("invalid image size")

	// ErrInvalidFileName is returned for extra file names that are not local
	// to the image root.
	ErrInvalidFileName = errors.New("invalid file name")
)

// Spec describes an image.
type Spec struct {
	// Source is the tree copied into the image.
	Source string
	// Output is the image file. It is created or truncated.
	Output string
	Kind   Kind
	SizeMB int
	// Label is the filesystem label. Optional.
	Label string
	// Files are written into the image root after the copy, by file name.
	Files map[string]string
	// Include are host files copied into the image root after the copy, by
	// file name in the image.
	Include map[string]string
	// TempDir is where the mount point is created. The default directory for
	// temporary files is used if empty.
	TempDir string
	// Progress receives the progress output of rsync. Optional.
	Progress io.Writer
}

func (s Spec) validate() error {
	if s.Source == "" || s.Output == "" {
		return sys.ErrEmptyPath
	}

	if s.SizeMB <= 0 {
		return fmt.Errorf("%w: %d MB", ErrInvalidSize, s.SizeMB)
	}

	if _, _, err := s.Kind.mkfsArgs(s.Output, s.Label); err != nil {
		return err
	}

	for name := range s.Files {
		if !filepath.IsLocal(name) {
			return fmt.Errorf("%w: %s", ErrInvalidFileName, name)
		}
	}

	for name, hostPath := range s.Include {
		if !filepath.IsLocal(name) {
			return fmt.Errorf("%w: %s", ErrInvalidFileName, name)
		}

		if _, err := os.Stat(hostPath); err != nil {
			return fmt.Errorf("include %s: %w", name, err)
		}
	}

	info, err := os.Stat(s.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("source %s: %w", s.Source, unix.ENOTDIR)
	}

	return nil
}

// host abstracts the privileged operations.
type host struct {
	requireRoot func() error
	allocate    func(path string, size int64) error
	run         func(ctx context.Context, cmd sys.Command) error
	unmount     func(target string) error
}

var defaultHost = host{
	requireRoot: sys.RequireRoot,
	allocate:    allocate,
	run: func(ctx context.Context, cmd sys.Command) error {
		_, err := cmd.Run(ctx)
		return err
	},
	unmount: func(target string) error {
		return unix.Unmount(target, 0)
	},
}

// Build creates the image described by spec. It requires root privileges.
//
// Unmount and mount point removal are attempted on every return path. Their
// failures are returned as warnings.
func Build(ctx context.Context, spec Spec) (report.Warnings, error) {
	return build(ctx, spec, defaultHost)
}

func build(ctx context.Context, spec Spec, host host) (warnings report.Warnings, err error) {
	if err := host.requireRoot(); err != nil {
		return nil, fmt.Errorf("%s image: %w", spec.Kind, err)
	}

	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("%s image: %w", spec.Kind, err)
	}

	var cleanup cleanupStack
	defer cleanup.run(&warnings)

	mountPoint, err := os.MkdirTemp(spec.TempDir, spec.Kind.mountPrefix())
	if err != nil {
		return warnings, fmt.Errorf("create mount point: %w", err)
	}

	mounted := false

	cleanup.push(func(warnings *report.Warnings) {
		removeMountPoint(mountPoint, mounted, warnings)
	})

	slog.Info("Allocating image",
		slog.String("path", spec.Output),
		slog.Int("size_mb", spec.SizeMB),
	)

	if err := host.allocate(spec.Output, int64(spec.SizeMB)*mebibyte); err != nil {
		return warnings, err
	}

	mkfs, mkfsArgs, _ := spec.Kind.mkfsArgs(spec.Output, spec.Label)

	if err := host.run(ctx, sys.Command{Name: mkfs, Args: mkfsArgs}); err != nil {
		return warnings, fmt.Errorf("format image: %w", err)
	}

	mount := sys.Command{
		Name: "mount",
		Args: []string{"-o", "loop", "-t", string(spec.Kind), spec.Output, mountPoint},
	}

	if err := host.run(ctx, mount); err != nil {
		return warnings, fmt.Errorf("mount image: %w", err)
	}

	mounted = true

	cleanup.push(func(warnings *report.Warnings) {
		if err := host.unmount(mountPoint); err != nil {
			warnings.AddHint(stage, mountPoint, "try umount -l "+mountPoint, err)
			return
		}

		mounted = false

		slog.Debug("Unmounted image", slog.String("mount_point", mountPoint))
	})

	rsync := sys.Command{
		Name:   "rsync",
		Args:   append(spec.Kind.rsyncArgs(), trailingSlash(spec.Source), trailingSlash(mountPoint)),
		Stream: spec.Progress,
	}

	if err := host.run(ctx, rsync); err != nil {
		return warnings, fmt.Errorf("copy tree: %w", err)
	}

	if err := writeFiles(mountPoint, spec.Files); err != nil {
		return warnings, err
	}

	if err := includeFiles(mountPoint, spec.Include); err != nil {
		return warnings, err
	}

	slog.Info("Created image",
		slog.String("path", spec.Output),
		slog.String("kind", string(spec.Kind)),
	)

	return warnings, nil
}

// removeMountPoint removes the mount point directory. If it is still
// mounted, only the empty directory removal is attempted, so the content of
// the image is never touched.
func removeMountPoint(path string, mounted bool, warnings *report.Warnings) {
	remove := os.RemoveAll
	if mounted {
		remove = os.Remove
	}

	if err := remove(path); err != nil {
		warnings.AddHint(stage, path, "remove it manually", err)
		return
	}

	slog.Debug("Removed mount point", slog.String("path", path))
}

func writeFiles(root string, files map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(files)) {
		path := filepath.Join(root, name)

		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}

		slog.Debug("Wrote file into image", slog.String("name", name))
	}

	return nil
}

func includeFiles(root string, include map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(include)) {
		if err := copyFile(include[name], filepath.Join(root, name)); err != nil {
			return fmt.Errorf("include %s: %w", name, err)
		}

		slog.Debug("Copied file into image",
			slog.String("name", name),
			slog.String("source", include[name]),
		)
	}

	return nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	dest, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	_, err = io.Copy(dest, source)
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}

	return err
}

func trailingSlash(path string) string {
	return filepath.Clean(path) + string(filepath.Separator)
}
