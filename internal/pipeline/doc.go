// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pipeline runs the build stages in order.
//
// Each stage reads the [profile.Profile] and the results of earlier stages
// from the build directory, so stages can be run individually as long as
// their inputs exist. Fatal errors are wrapped in a [StageError] naming the
// stage. Soft failures of all stages are collected and returned as warnings.
package pipeline
