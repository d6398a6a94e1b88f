// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package diskimage

import "github.com/aibor/pibuild/internal/report"

type cleanupFunc func(warnings *report.Warnings)

// cleanupStack runs registered actions in reverse order of registration.
type cleanupStack struct {
	funcs []cleanupFunc
}

func (s *cleanupStack) push(fn cleanupFunc) {
	s.funcs = append(s.funcs, fn)
}

func (s *cleanupStack) run(warnings *report.Warnings) {
	for idx := len(s.funcs) - 1; idx >= 0; idx-- {
		s.funcs[idx](warnings)
	}

	s.funcs = nil
}
