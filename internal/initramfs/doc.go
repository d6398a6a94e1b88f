// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package initramfs builds the initial RAM filesystem archive.
//
// A minimal runtime tree is staged in a temporary directory: the BusyBox
// binary with its applet links, its shared libraries, device nodes and an
// init script that switches to the real root filesystem. The staged tree is
// serialized into a newc CPIO archive by an [Archiver] and compressed with a
// [Compression].
package initramfs
