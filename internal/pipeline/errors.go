// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStage is returned for unknown [Stage] names.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrDownload is returned if the source archive can not be downloaded.
	ErrDownload = errors.New("download failed")

	// ErrUnknownArchive is returned for source archives with an unsupported
	// file name extension.
	ErrUnknownArchive = errors.New("unknown archive format")

	// ErrUnsafePath is returned for archive entries that would be extracted
	// outside of the destination directory.
	ErrUnsafePath = errors.New("unsafe path in archive")

	// ErrMissingInput is returned if a stage's input does not exist, usually
	// because an earlier stage has not been run.
	ErrMissingInput = errors.New("missing input")

	// ErrUnknownFeature is reported as warning for features to disable that
	// are not present in the configuration at all.
	ErrUnknownFeature = errors.New("feature not present in config")
)

// StageError wraps the fatal error of a stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Is implements the [errors.Is] interface.
func (*StageError) Is(other error) bool {
	_, ok := other.(*StageError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *StageError) Unwrap() error {
	return e.Err
}
