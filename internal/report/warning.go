// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"errors"
	"fmt"
	"log/slog"
)

// Warning is a soft failure that did not abort the operation it occurred in.
type Warning struct {
	// Stage is the component that produced the warning.
	Stage string
	// Subject is the item the failure is about, usually a path or name.
	Subject string
	// Hint is optional operator guidance.
	Hint string
	Err  error
}

// Error implements the [error] interface.
func (w *Warning) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", w.Stage, w.Subject, w.Err)
	if w.Hint != "" {
		msg += " (" + w.Hint + ")"
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*Warning) Is(other error) bool {
	_, ok := other.(*Warning)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (w *Warning) Unwrap() error {
	return w.Err
}

// Warnings is a list of soft failures.
type Warnings []*Warning

// Add appends a warning and logs it.
func (w *Warnings) Add(stage, subject string, err error) {
	w.add(&Warning{Stage: stage, Subject: subject, Err: err})
}

// AddHint appends a warning carrying operator guidance and logs it.
func (w *Warnings) AddHint(stage, subject, hint string, err error) {
	w.add(&Warning{Stage: stage, Subject: subject, Hint: hint, Err: err})
}

func (w *Warnings) add(warning *Warning) {
	attrs := []any{
		slog.String("stage", warning.Stage),
		slog.String("subject", warning.Subject),
		slog.Any("error", warning.Err),
	}
	if warning.Hint != "" {
		attrs = append(attrs, slog.String("hint", warning.Hint))
	}

	slog.Warn("Soft failure", attrs...)

	*w = append(*w, warning)
}

// Append adds all given warnings without logging them again.
func (w *Warnings) Append(other Warnings) {
	*w = append(*w, other...)
}

// Subjects returns the subjects of all warnings in order.
func (w Warnings) Subjects() []string {
	subjects := make([]string, 0, len(w))
	for _, warning := range w {
		subjects = append(subjects, warning.Subject)
	}

	return subjects
}

// Err joins all warnings into a single error. It returns nil if there are no
// warnings.
func (w Warnings) Err() error {
	if len(w) == 0 {
		return nil
	}

	errs := make([]error, 0, len(w))
	for _, warning := range w {
		errs = append(errs, warning)
	}

	return errors.Join(errs...)
}
