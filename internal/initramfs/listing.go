// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
)

const listingSeparator = 0

// WriteListing writes the paths of all files in the tree at root relative to
// root, each prefixed with "./" and terminated by a NUL byte, like
// "find . -print0" does. The root itself is listed as ".". Paths are in
// lexical order.
func WriteListing(ctx context.Context, w io.Writer, root string) error {
	buffered := bufio.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if rel != "." {
			rel = "./" + filepath.ToSlash(rel)
		}

		if _, err := buffered.WriteString(rel); err != nil {
			return err
		}

		return buffered.WriteByte(listingSeparator)
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", root, err)
	}

	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("list %s: %w", root, err)
	}

	return nil
}

// scanNUL is a [bufio.SplitFunc] for NUL terminated entries.
func scanNUL(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if idx := bytes.IndexByte(data, listingSeparator); idx >= 0 {
		return idx + 1, data[:idx], nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}
