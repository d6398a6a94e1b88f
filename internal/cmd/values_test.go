// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd_test

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aibor/pibuild/internal/cmd"
	"github.com/aibor/pibuild/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePath_Set(t *testing.T) {
	abs, err := filepath.Abs("path")
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       string
		expected    string
		expectedErr error
	}{
		{
			name:        "empty",
			expectedErr: sys.ErrEmptyPath,
		},
		{
			name:     "relative",
			input:    "path",
			expected: abs,
		},
		{
			name:     "absolute",
			input:    "/path/../other",
			expected: "/other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path cmd.FilePath

			err := path.Set(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)

			assert.Equal(t, tt.expected, path.String())
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()
	file := sys.MustWriteFile(t, dir, "file", "content")

	require.NoError(t, cmd.ValidateFilePath(file))
	require.ErrorIs(t, cmd.ValidateFilePath(dir), cmd.ErrNotRegularFile)
	require.Error(t, cmd.ValidateFilePath(filepath.Join(dir, "missing")))
}

func TestLimitedIntValue_Set(t *testing.T) {
	ptr := func(n int) *int {
		return &n
	}

	tests := []struct {
		name        string
		value       cmd.LimitedIntValue
		input       string
		expected    *int
		expectedErr error
	}{
		{
			name:        "empty",
			expectedErr: strconv.ErrSyntax,
		},
		{
			name:        "not a number",
			input:       "dwdfwef",
			expectedErr: strconv.ErrSyntax,
		},
		{
			name:        "longer than 64bit",
			input:       "184467440737095516151111111111111111111",
			expectedErr: strconv.ErrRange,
		},
		{
			name:  "no bounds",
			input: "-3",
			value: cmd.LimitedIntValue{
				Value: ptr(42),
			},
			expected: ptr(-3),
		},
		{
			name:  "is lower",
			input: "42",
			value: cmd.LimitedIntValue{
				Value: ptr(0),
				Lower: 42,
				Upper: 43,
			},
			expected: ptr(42),
		},
		{
			name:  "is upper",
			input: "42",
			value: cmd.LimitedIntValue{
				Value: ptr(0),
				Lower: 41,
				Upper: 42,
			},
			expected: ptr(42),
		},
		{
			name:  "is below",
			input: "42",
			value: cmd.LimitedIntValue{
				Lower: 43,
				Upper: 44,
			},
			expectedErr: cmd.ErrValueOutOfRange,
		},
		{
			name:  "is above",
			input: "42",
			value: cmd.LimitedIntValue{
				Lower: 40,
				Upper: 41,
			},
			expectedErr: cmd.ErrValueOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Set(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, tt.expected, tt.value.Value)
		})
	}
}
