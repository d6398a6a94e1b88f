// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package perms_test

import (
	"io/fs"
	"testing"

	"github.com/aibor/pibuild/internal/perms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestModeFileMode(t *testing.T) {
	assert.Equal(t, fs.ModeSticky|0o777, perms.StickyWorld.FileMode())
	assert.Equal(t, fs.FileMode(0o644), perms.Data.FileMode())
	assert.Equal(t, fs.ModeSetuid|fs.ModeSetgid|0o755, perms.Mode(0o6755).FileMode())
	assert.Equal(t, perms.Mode(0o6755), perms.ModeOf(fs.ModeSetuid|fs.ModeSetgid|0o755))
}

func TestModeUnmarshalYAML(t *testing.T) {
	tests := []struct {
		input     string
		expected  perms.Mode
		assertErr require.ErrorAssertionFunc
	}{
		{input: "mode: 01777", expected: 0o1777, assertErr: require.NoError},
		{input: "mode: 0777", expected: 0o777, assertErr: require.NoError},
		{input: "mode: 755", expected: 0o755, assertErr: require.NoError},
		{input: "mode: \"0o644\"", expected: 0o644, assertErr: require.NoError},
		{input: "mode: 0899", assertErr: require.Error},
		{input: "mode: 017777", assertErr: require.Error},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var actual struct {
				Mode perms.Mode `yaml:"mode"`
			}

			err := yaml.Unmarshal([]byte(tt.input), &actual)
			tt.assertErr(t, err)
			assert.Equal(t, tt.expected, actual.Mode)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "1777", perms.StickyWorld.String())
	assert.Equal(t, "0644", perms.Data.String())
}
