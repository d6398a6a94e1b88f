// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package profile loads and validates the build recipe.
//
// A [Profile] is loaded once and passed by value to the components that need
// it. Every optional key has a default, so a minimal recipe only names the
// package version, the target architecture and the cross toolchain.
package profile
