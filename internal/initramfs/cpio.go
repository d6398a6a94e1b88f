// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package initramfs

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/aibor/pibuild/internal/perms"
	"github.com/cavaliergopher/cpio"
)

const numLinks = 2

// CPIOWriter implements [Writer] for [cpio.Writer] in newc format.
type CPIOWriter struct {
	cpioWriter *cpio.Writer
	rdev       *rdevWriter
}

// NewCPIOWriter creates a new archive writer.
func NewCPIOWriter(w io.Writer) *CPIOWriter {
	rdev := &rdevWriter{w: w}

	return &CPIOWriter{
		cpioWriter: cpio.NewWriter(rdev),
		rdev:       rdev,
	}
}

// Close writes the trailer and flushes the archive.
func (w *CPIOWriter) Close() error {
	err := w.cpioWriter.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return nil
}

// writeHeader writes the cpio header.
func (w *CPIOWriter) writeHeader(hdr *cpio.Header) error {
	if err := w.cpioWriter.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}

	return nil
}

// WriteDirectory adds a directory entry for the given path to the archive.
func (w *CPIOWriter) WriteDirectory(path string, mode fs.FileMode) error {
	header := &cpio.Header{
		Name:  path,
		Mode:  cpio.TypeDir | cpioPerm(mode),
		Links: numLinks,
	}

	return w.writeHeader(header)
}

// WriteLink adds a symbolic link for the given path pointing to the given
// target.
func (w *CPIOWriter) WriteLink(path, target string) error {
	header := &cpio.Header{
		Name: path,
		Mode: cpio.TypeSymlink | cpio.ModePerm,
		Size: int64(len(target)),
	}
	if err := w.writeHeader(header); err != nil {
		return err
	}

	// Body of a link is the path of the target file.
	if _, err := w.cpioWriter.Write([]byte(target)); err != nil {
		return fmt.Errorf("write body for %s: %w", path, err)
	}

	return nil
}

// WriteRegular copies the existing file from source into the archive.
func (w *CPIOWriter) WriteRegular(path string, source fs.File, mode fs.FileMode) error {
	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("read info: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	header := &cpio.Header{
		Name:  path,
		Mode:  cpio.TypeReg | cpioPerm(mode),
		Size:  info.Size(),
		Links: 1,
	}

	if err := w.writeHeader(header); err != nil {
		return err
	}

	if _, err := io.Copy(w.cpioWriter, source); err != nil {
		return fmt.Errorf("write body for %s: %w", path, err)
	}

	return nil
}

// WriteDevice adds a device node. The archive entry carries the device
// number, so the node does not need to exist on the build host.
func (w *CPIOWriter) WriteDevice(path string, spec devnode.Spec) error {
	mode, err := spec.Mode()
	if err != nil {
		return fmt.Errorf("device %s: %w", path, err)
	}

	header := &cpio.Header{
		Name:  path,
		Mode:  cpio.FileMode(mode),
		Links: 1,
	}

	w.rdev.arm(spec.Major, spec.Minor)
	defer w.rdev.disarm()

	return w.writeHeader(header)
}

func cpioPerm(mode fs.FileMode) cpio.FileMode {
	return cpio.FileMode(perms.ModeOf(mode))
}
