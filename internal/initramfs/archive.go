// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"syscall"

	"github.com/aibor/pibuild/internal/devnode"
	"golang.org/x/sys/unix"
)

const devDir = "dev"

// writeArchive writes an archive entry for each path of the NUL delimited
// listing. Device nodes of devices not present in the listing are appended.
func writeArchive(
	root string,
	listing io.Reader,
	writer Writer,
	devices []devnode.Spec,
) error {
	written := make(map[string]bool)

	scanner := bufio.NewScanner(listing)
	scanner.Split(scanNUL)

	for scanner.Scan() {
		name := path.Clean(scanner.Text())

		if err := writeEntry(root, name, writer); err != nil {
			return err
		}

		written[name] = true
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read listing: %w", err)
	}

	for _, spec := range devices {
		name := path.Join(devDir, spec.Name)
		if written[name] {
			continue
		}

		if !written[devDir] {
			if err := writer.WriteDirectory(devDir, 0o755); err != nil {
				return err
			}

			written[devDir] = true
		}

		if err := writer.WriteDevice(name, spec); err != nil {
			return err
		}

		written[name] = true
	}

	return nil
}

func writeEntry(root, name string, writer Writer) error {
	source := filepath.Join(root, filepath.FromSlash(name))

	info, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	mode := info.Mode()

	switch {
	case mode.IsDir():
		return writer.WriteDirectory(name, mode)
	case mode&fs.ModeSymlink != 0:
		target, err := os.Readlink(source)
		if err != nil {
			return fmt.Errorf("read link: %w", err)
		}

		return writer.WriteLink(name, target)
	case mode.IsRegular():
		file, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("open: %w", err)
		}
		defer file.Close()

		return writer.WriteRegular(name, file, mode)
	case mode&fs.ModeDevice != 0:
		spec, err := deviceSpec(name, info)
		if err != nil {
			return err
		}

		return writer.WriteDevice(name, spec)
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFileType, name, mode.Type())
	}
}

// deviceSpec reads the device number of an existing device node.
func deviceSpec(name string, info fs.FileInfo) (devnode.Spec, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return devnode.Spec{}, fmt.Errorf("%w: %s: no device number", ErrUnsupportedFileType, name)
	}

	kind := devnode.Block
	if info.Mode()&fs.ModeCharDevice != 0 {
		kind = devnode.Char
	}

	rdev := uint64(stat.Rdev) //nolint:unconvert

	return devnode.Spec{
		Name:  path.Base(name),
		Major: unix.Major(rdev),
		Minor: unix.Minor(rdev),
		Kind:  kind,
	}, nil
}
