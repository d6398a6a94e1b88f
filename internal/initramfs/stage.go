// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/aibor/pibuild/internal/report"
	"github.com/aibor/pibuild/internal/sys"
)

const (
	stage       = "initramfs"
	dirMode     = 0o755
	busyboxMode = 0o755
)

var (
	stageDirs  = []string{"bin", "sbin", "lib", "lib64", "dev", "proc", "sys", "mnt"}
	appletDirs = []string{"bin", "sbin"}
)

// StageSpec describes the content of the staged runtime tree.
type StageSpec struct {
	// Busybox is the path of the multi-call binary.
	Busybox string
	// AppletRoot is a tree with already installed applet links, usually the
	// root filesystem. Its links are used if the binary can not install its
	// own links, like when it is built for a different architecture.
	AppletRoot string
	// Libs are the shared objects to copy.
	Libs []string
	// Devices are created in "dev".
	Devices []devnode.Spec
	// RootDevice is mounted by the init script.
	RootDevice string
}

// Stage populates dir with a minimal runtime tree.
//
// Device node creation is best effort and reported as warnings.
func Stage(ctx context.Context, dir string, spec StageSpec) (report.Warnings, error) {
	var warnings report.Warnings

	for _, sub := range stageDirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), dirMode); err != nil {
			return warnings, fmt.Errorf("create %s: %w", sub, err)
		}
	}

	busybox := filepath.Join(dir, "bin", "busybox")
	if err := copyFile(spec.Busybox, busybox, busyboxMode); err != nil {
		return warnings, fmt.Errorf("copy busybox: %w", err)
	}

	if err := installApplets(ctx, dir, busybox); err != nil {
		if spec.AppletRoot == "" {
			return warnings, err
		}

		warnings.AddHint(stage, "applets", "using links of "+spec.AppletRoot, err)

		if err := copyAppletLinks(spec.AppletRoot, dir); err != nil {
			return warnings, fmt.Errorf("copy applet links: %w", err)
		}
	}

	visited := make(map[string]bool)

	for _, lib := range spec.Libs {
		if err := copyLib(lib, dir, visited); err != nil {
			return warnings, fmt.Errorf("copy library %s: %w", lib, err)
		}
	}

	script, err := InitScript(spec.RootDevice)
	if err != nil {
		return warnings, err
	}

	//nolint:gosec
	if err := os.WriteFile(filepath.Join(dir, "init"), []byte(script), busyboxMode); err != nil {
		return warnings, fmt.Errorf("write init: %w", err)
	}

	// WriteFile respects the umask.
	if err := os.Chmod(filepath.Join(dir, "init"), busyboxMode); err != nil {
		return warnings, fmt.Errorf("chmod init: %w", err)
	}

	warnings.Append(devnode.Create(filepath.Join(dir, devDir), spec.Devices))

	slog.Info("Staged initramfs tree",
		slog.String("dir", dir),
		slog.Int("libs", len(spec.Libs)),
	)

	return warnings, nil
}

// installApplets lets the binary install its applet links. BusyBox creates
// absolute links pointing to its own location, which is the staging path on
// the host, so they are rewritten afterwards.
func installApplets(ctx context.Context, dir, busybox string) error {
	for _, sub := range appletDirs {
		cmd := sys.Command{
			Name: busybox,
			Args: []string{"--install", "-s", filepath.Join(dir, sub)},
			Dir:  dir,
		}

		if _, err := cmd.Run(ctx); err != nil {
			return fmt.Errorf("install applets into %s: %w", sub, err)
		}
	}

	return relinkApplets(dir)
}

func relinkApplets(dir string) error {
	prefix := filepath.Clean(dir) + string(filepath.Separator)

	for _, sub := range appletDirs {
		entries, err := os.ReadDir(filepath.Join(dir, sub))
		if err != nil {
			return fmt.Errorf("read %s: %w", sub, err)
		}

		for _, entry := range entries {
			if entry.Type()&fs.ModeSymlink == 0 {
				continue
			}

			link := filepath.Join(dir, sub, entry.Name())

			target, err := os.Readlink(link)
			if err != nil {
				return fmt.Errorf("read link: %w", err)
			}

			if !strings.HasPrefix(target, prefix) {
				continue
			}

			err = replaceLink(link, "/"+filepath.ToSlash(strings.TrimPrefix(target, prefix)))
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// copyAppletLinks copies all links pointing to a "busybox" binary from the
// applet directories of root into the ones of dir.
func copyAppletLinks(root, dir string) error {
	for _, sub := range appletDirs {
		entries, err := os.ReadDir(filepath.Join(root, sub))
		if err != nil {
			return fmt.Errorf("read %s: %w", sub, err)
		}

		for _, entry := range entries {
			if entry.Type()&fs.ModeSymlink == 0 {
				continue
			}

			target, err := os.Readlink(filepath.Join(root, sub, entry.Name()))
			if err != nil {
				return fmt.Errorf("read link: %w", err)
			}

			if filepath.Base(target) != "busybox" {
				continue
			}

			err = replaceLink(filepath.Join(dir, sub, entry.Name()), target)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// copyLib copies a shared object into "lib64" if its path has a "lib64"
// element, otherwise into "lib". Symbolic links are copied as links. If the
// link target is in the same directory, it is copied as well.
func copyLib(src, dir string, visited map[string]bool) error {
	if visited[src] {
		return nil
	}

	visited[src] = true

	sub := "lib"
	if slices.Contains(strings.Split(filepath.ToSlash(src), "/"), "lib64") {
		sub = "lib64"
	}

	dst := filepath.Join(dir, sub, filepath.Base(src))

	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		return copyFile(src, dst, info.Mode().Perm())
	}

	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("read link: %w", err)
	}

	if err := replaceLink(dst, target); err != nil {
		return err
	}

	if filepath.IsAbs(target) || strings.ContainsRune(target, filepath.Separator) {
		slog.Warn("Library link target not copied",
			slog.String("link", src),
			slog.String("target", target),
		)

		return nil
	}

	return copyLib(filepath.Join(filepath.Dir(src), target), dir, visited)
}

func replaceLink(link, target string) error {
	err := os.Remove(link)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", link, err)
	}

	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("link %s: %w", link, err)
	}

	return nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	dest, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		_ = dest.Close()
		return fmt.Errorf("copy: %w", err)
	}

	if err := dest.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Chmod(dst, mode); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	return nil
}
