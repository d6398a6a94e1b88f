// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import "errors"

var (
	// ErrNotRegularFile is returned if a regular file is expected but
	// something else is given.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrUnsupportedFileType is returned for files that can not be put into
	// the archive, like sockets.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrUnknownArchiver is returned for unknown [Archiver] names.
	ErrUnknownArchiver = errors.New("unknown archiver")

	// ErrUnknownCompression is returned for unknown [Compression] names.
	ErrUnknownCompression = errors.New("unknown compression")
)
