// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package diskimage creates filesystem images from directory trees.
//
// The image is allocated, formatted, loop mounted at a temporary mount point
// and populated with rsync. Unmount and mount point removal are registered
// as cleanup actions right after the respective resource is acquired and run
// in reverse order on every return path. Cleanup failures never replace the
// error that triggered the cleanup. They are returned as warnings carrying
// operator guidance instead.
package diskimage
