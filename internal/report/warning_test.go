// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package report_test

import (
	"errors"
	"os"
	"testing"

	"github.com/aibor/pibuild/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarnings(t *testing.T) {
	var warnings report.Warnings

	require.NoError(t, warnings.Err())

	warnings.Add("devnode", "dev/null", os.ErrPermission)
	warnings.AddHint("diskimage", "/tmp/mp", "try umount -l", errors.New("busy"))

	assert.Len(t, warnings, 2)
	assert.Equal(t, []string{"dev/null", "/tmp/mp"}, warnings.Subjects())

	err := warnings.Err()
	require.ErrorIs(t, err, os.ErrPermission)
	require.ErrorIs(t, err, &report.Warning{})
	assert.Contains(t, err.Error(), "diskimage: /tmp/mp: busy (try umount -l)")
}

func TestWarningsAppend(t *testing.T) {
	var first, second report.Warnings

	first.Add("perms", "a", os.ErrNotExist)
	second.Add("perms", "b", os.ErrNotExist)
	first.Append(second)

	assert.Equal(t, []string{"a", "b"}, first.Subjects())
}
