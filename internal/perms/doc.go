// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package perms assigns permissions to an assembled root filesystem tree.
//
// Directories get [Executable] mode, regular files either [Executable] or
// [Data] mode depending on their location and content. Special directories
// like temp areas keep their own modes given as [Override].
package perms
