// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package report separates soft failures from hard failures.
//
// Operations that may partially fail without breaking the build, like single
// device node creation or single permission changes, return [Warnings]
// alongside their hard error. Callers aggregate warnings and still report
// overall success.
package report
