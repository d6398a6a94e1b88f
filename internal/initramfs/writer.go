// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package initramfs

import (
	"io/fs"

	"github.com/aibor/pibuild/internal/devnode"
)

// Writer defines initramfs archive writer interface.
type Writer interface {
	WriteRegular(path string, source fs.File, mode fs.FileMode) error
	WriteDirectory(path string, mode fs.FileMode) error
	WriteLink(path, target string) error
	WriteDevice(path string, spec devnode.Spec) error
}
