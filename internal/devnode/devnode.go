// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package devnode creates device special files from a table.
package devnode

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aibor/pibuild/internal/report"
	"golang.org/x/sys/unix"
)

const stage = "devnode"

// ErrUnknownKind is returned for device kinds other than [Char] and [Block].
var ErrUnknownKind = errors.New("unknown device kind")

// Kind is the type of a device special file.
type Kind string

// Supported device kinds.
const (
	Char  Kind = "char"
	Block Kind = "block"
)

// UnmarshalText implements [encoding.TextUnmarshaler]. The short forms "c"
// and "b" as used by mknod(1) are accepted as well.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "c", "char":
		*k = Char
	case "b", "block":
		*k = Block
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, text)
	}

	return nil
}

// Spec describes a single device node.
type Spec struct {
	Name  string `yaml:"name"`
	Major uint32 `yaml:"major"`
	Minor uint32 `yaml:"minor"`
	Kind  Kind   `yaml:"kind"`
}

// Mode returns the file type and permission bits for mknod(2). Character
// devices are world read- and writable, block devices only for owner and
// group.
func (s Spec) Mode() (uint32, error) {
	switch s.Kind {
	case Char:
		return unix.S_IFCHR | 0o666, nil
	case Block:
		return unix.S_IFBLK | 0o660, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, s.Kind)
	}
}

// Dev returns the device number.
func (s Spec) Dev() uint64 {
	return unix.Mkdev(s.Major, s.Minor)
}

// RootfsTable is the minimal static /dev of the root filesystem.
func RootfsTable() []Spec {
	return []Spec{
		{Name: "console", Major: 5, Minor: 1, Kind: Char},
		{Name: "null", Major: 1, Minor: 3, Kind: Char},
		{Name: "zero", Major: 1, Minor: 5, Kind: Char},
		{Name: "random", Major: 1, Minor: 8, Kind: Char},
		{Name: "urandom", Major: 1, Minor: 9, Kind: Char},
		{Name: "tty", Major: 5, Minor: 0, Kind: Char},
		{Name: "tty0", Major: 4, Minor: 0, Kind: Char},
		{Name: "tty1", Major: 4, Minor: 1, Kind: Char},
	}
}

// InitramfsTable is the minimal /dev of the initramfs, needed before
// devtmpfs is mounted.
func InitramfsTable() []Spec {
	return []Spec{
		{Name: "console", Major: 5, Minor: 1, Kind: Char},
		{Name: "null", Major: 1, Minor: 3, Kind: Char},
		{Name: "zero", Major: 1, Minor: 5, Kind: Char},
		{Name: "tty", Major: 5, Minor: 0, Kind: Char},
	}
}

type mknodFunc func(path string, mode uint32, dev int) error

// Create creates a device node in dir for each spec that does not exist yet.
//
// Creation is best effort. Failures, like missing privileges, are returned
// as warnings, since the device manager at boot time is expected to create
// the nodes anyway.
func Create(dir string, specs []Spec) report.Warnings {
	return create(dir, specs, unix.Mknod)
}

func create(dir string, specs []Spec, mknod mknodFunc) report.Warnings {
	var warnings report.Warnings

	if err := os.MkdirAll(dir, 0o755); err != nil {
		warnings.Add(stage, dir, err)
		return warnings
	}

	for _, spec := range specs {
		path := filepath.Join(dir, spec.Name)

		if _, err := os.Lstat(path); err == nil {
			slog.Debug("Device node exists", slog.String("path", path))
			continue
		}

		mode, err := spec.Mode()
		if err != nil {
			warnings.Add(stage, path, err)
			continue
		}

		err = mknod(path, mode, int(spec.Dev()))
		if err != nil {
			warnings.Add(stage, path, fmt.Errorf("mknod: %w", err))
			continue
		}

		// mknod respects the umask.
		err = os.Chmod(path, fs.FileMode(mode&0o777))
		if err != nil {
			warnings.Add(stage, path, fmt.Errorf("chmod: %w", err))
			continue
		}

		slog.Debug("Created device node",
			slog.String("path", path),
			slog.Any("major", spec.Major),
			slog.Any("minor", spec.Minor),
		)
	}

	return warnings
}
