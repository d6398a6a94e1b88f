// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import "errors"

var (
	// ErrMissingField is returned if a required recipe key is not set.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidValue is returned if a recipe value is out of range or can
	// not be parsed.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownInstallStyle is returned for unknown [InstallStyle] names.
	ErrUnknownInstallStyle = errors.New("unknown install style")
)
