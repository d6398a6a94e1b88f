// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package perms

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Unix special permission bits as used by chmod(1).
const (
	setUID Mode = 0o4000
	setGID Mode = 0o2000
	sticky Mode = 0o1000
)

// Mode is a Unix permission mode including the special bits, written in
// octal like chmod(1) expects it.
type Mode uint32

// Common modes.
const (
	Executable  Mode = 0o755
	Data        Mode = 0o644
	WorldWrite  Mode = 0o777
	StickyWorld Mode = 0o1777
)

// FileMode converts the mode into an [fs.FileMode]. Special bits are mapped
// to their [fs.FileMode] counterparts, so they survive [os.Chmod].
func (m Mode) FileMode() fs.FileMode {
	mode := fs.FileMode(m) & fs.ModePerm

	if m&setUID != 0 {
		mode |= fs.ModeSetuid
	}

	if m&setGID != 0 {
		mode |= fs.ModeSetgid
	}

	if m&sticky != 0 {
		mode |= fs.ModeSticky
	}

	return mode
}

// ModeOf converts an [fs.FileMode] back into a [Mode].
func ModeOf(fileMode fs.FileMode) Mode {
	mode := Mode(fileMode.Perm())

	if fileMode&fs.ModeSetuid != 0 {
		mode |= setUID
	}

	if fileMode&fs.ModeSetgid != 0 {
		mode |= setGID
	}

	if fileMode&fs.ModeSticky != 0 {
		mode |= sticky
	}

	return mode
}

func (m Mode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

// MarshalText implements [encoding.TextMarshaler].
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler]. The text is always
// parsed as octal number, with or without leading "0" or "0o".
func (m *Mode) UnmarshalText(text []byte) error {
	str := strings.TrimPrefix(strings.ToLower(string(text)), "0o")

	value, err := strconv.ParseUint(str, 8, 32)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidMode, text, err)
	}

	if value > 0o7777 {
		return fmt.Errorf("%w: %q: out of range", ErrInvalidMode, text)
	}

	*m = Mode(value)

	return nil
}
