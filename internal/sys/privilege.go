// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "golang.org/x/sys/unix"

// RequireRoot returns [ErrNotRoot] if the process does not run with
// effective user ID 0.
func RequireRoot() error {
	if unix.Geteuid() != 0 {
		return ErrNotRoot
	}

	return nil
}
