// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scaffold creates the canonical directory tree of a Unix root
// filesystem and populates it with the essential configuration files a
// BusyBox init needs.
package scaffold
