// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"debug/elf"
	"testing"

	"github.com/aibor/pibuild/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchSet(t *testing.T) {
	tests := []struct {
		input     string
		expected  sys.Arch
		assertErr require.ErrorAssertionFunc
	}{
		{input: "arm64", expected: sys.ARM64, assertErr: require.NoError},
		{input: "aarch64", expected: sys.ARM64, assertErr: require.NoError},
		{input: "arm", expected: sys.ARM, assertErr: require.NoError},
		{input: "amd64", expected: sys.X86, assertErr: require.NoError},
		{input: "riscv64", expected: sys.RISCV, assertErr: require.NoError},
		{
			input: "mips",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, sys.ErrArchNotSupported)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var arch sys.Arch

			err := arch.Set(tt.input)
			tt.assertErr(t, err)
			assert.Equal(t, tt.expected, arch)
		})
	}
}

func TestArchMachines(t *testing.T) {
	arch := sys.ARM64
	assert.Equal(t, []elf.Machine{elf.EM_AARCH64}, arch.Machines())

	unknown := sys.Arch("sparc")
	assert.Empty(t, unknown.Machines())
}
