// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sys wraps the host system boundary: external tool invocation,
// privilege checks, ELF inspection and shared library resolution inside a
// cross-compilation sysroot.
package sys
