// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/pibuild/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateELF(t *testing.T) {
	tests := []struct {
		name        string
		hdr         elf.FileHeader
		arch        sys.Arch
		expectedErr error
	}{
		{
			name: "arm64 linux",
			hdr: elf.FileHeader{
				OSABI:   elf.ELFOSABI_LINUX,
				Machine: elf.EM_AARCH64,
			},
			arch: sys.ARM64,
		},
		{
			name: "x86 on arm64",
			hdr: elf.FileHeader{
				OSABI:   elf.ELFOSABI_NONE,
				Machine: elf.EM_X86_64,
			},
			arch:        sys.ARM64,
			expectedErr: sys.ErrMachineNotSupported,
		},
		{
			name: "unsupported OSABI",
			hdr: elf.FileHeader{
				OSABI:   elf.ELFOSABI_FREEBSD,
				Machine: elf.EM_AARCH64,
			},
			arch:        sys.ARM64,
			expectedErr: sys.ErrOSABINotSupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sys.ValidateELF(tt.hdr, tt.arch)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestReadELFInfo(t *testing.T) {
	t.Run("not elf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "script")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))

		_, err := sys.ReadELFInfo(path)
		require.ErrorIs(t, err, sys.ErrNotELFFile)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := sys.ReadELFInfo(filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("host executable", func(t *testing.T) {
		self, err := os.Executable()
		require.NoError(t, err)

		info, err := sys.ReadELFInfo(self)
		require.NoError(t, err)
		assert.NotEqual(t, elf.EM_NONE, info.Header.Machine)
	})
}
