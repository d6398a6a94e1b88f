// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package diskimage

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

const mebibyte = 1 << 20

type fallocateFunc func(fd int, mode uint32, off, size int64) error

// allocate creates the file at path with exactly size bytes. The blocks are
// reserved with fallocate(2). If the filesystem does not support it, the
// file is filled with zeros instead.
func allocate(path string, size int64) error {
	return allocateWith(path, size, unix.Fallocate)
}

func allocateWith(path string, size int64, fallocate fallocateFunc) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	err = fallocate(int(file.Fd()), 0, 0, size)
	if err != nil {
		slog.Warn("Fast allocation failed, filling with zeros",
			slog.String("path", path),
			slog.Any("error", err),
		)

		err = zeroFill(file, size)
	}

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("allocate image: %w", err)
	}

	return nil
}

func zeroFill(file *os.File, size int64) error {
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	if _, err := io.CopyN(file, zeroReader{}, size); err != nil {
		return fmt.Errorf("zero fill: %w", err)
	}

	return nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
