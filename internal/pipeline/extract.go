// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// decompress returns a reader for the decompressed content of the archive
// named name, based on its extension.
func decompress(name string, r io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz2"):
		return io.NopCloser(bzip2.NewReader(r)), nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(name, ".tar.xz"):
		reader, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}

		return io.NopCloser(reader), nil
	case strings.HasSuffix(name, ".tar.zst"):
		decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}

		return decoder.IOReadCloser(), nil
	case strings.HasSuffix(name, ".tar"):
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownArchive, filepath.Base(name))
	}
}

// extract unpacks the tar archive at path into dest.
func extract(path, dest string) error {
	slog.Info("Extracting",
		slog.String("archive", path),
		slog.String("dest", dest),
	)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	reader, err := decompress(path, file)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", path, err)
	}
	defer reader.Close()

	return extractTar(reader, dest)
}

func extractTar(r io.Reader, dest string) error {
	archive := tar.NewReader(r)
	count := 0

	for {
		hdr, err := archive.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}

		if err := extractEntry(archive, hdr, dest, name); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}

		count++
	}

	slog.Debug("Extracted archive", slog.Int("entries", count))

	return nil
}

func extractEntry(archive *tar.Reader, hdr *tar.Header, dest, name string) error {
	target := filepath.Join(dest, name)
	mode := hdr.FileInfo().Mode()

	if hdr.Typeflag != tar.TypeDir {
		if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
			return err
		}
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, mode.Perm()|0o700)
	case tar.TypeReg:
		return writeEntry(archive, target, mode.Perm())
	case tar.TypeSymlink:
		if err := removeExisting(target); err != nil {
			return err
		}

		return os.Symlink(hdr.Linkname, target)
	case tar.TypeLink:
		linkName := filepath.FromSlash(hdr.Linkname)
		if !filepath.IsLocal(linkName) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Linkname)
		}

		if err := removeExisting(target); err != nil {
			return err
		}

		return os.Link(filepath.Join(dest, linkName), target)
	default:
		slog.Debug("Skipping archive entry",
			slog.String("name", hdr.Name),
			slog.String("type", string(hdr.Typeflag)),
		)

		return nil
	}
}

func writeEntry(r io.Reader, target string, mode fs.FileMode) error {
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	_, err = io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	return err
}

func removeExisting(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
