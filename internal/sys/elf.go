// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ValidateELF validates that ELF attributes match the requested architecture.
func ValidateELF(hdr elf.FileHeader, arch Arch) error {
	switch hdr.OSABI {
	case elf.ELFOSABI_NONE, elf.ELFOSABI_LINUX:
		// supported, pass
	default:
		return fmt.Errorf("%w: %s", ErrOSABINotSupported, hdr.OSABI)
	}

	if !slices.Contains(arch.Machines(), hdr.Machine) {
		return fmt.Errorf(
			"%w: %s on %s",
			ErrMachineNotSupported,
			hdr.Machine,
			arch,
		)
	}

	return nil
}

// ELFInfo is the subset of ELF metadata relevant for dependency resolution.
type ELFInfo struct {
	Header elf.FileHeader
	// Dynamic is true if the file requests a program interpreter or declares
	// needed shared objects.
	Dynamic bool
}

// ReadELFInfo reads the [ELFInfo] of the file at the given path.
//
// It returns [ErrNotELFFile] if the file is not an ELF file.
func ReadELFInfo(path string) (*ELFInfo, error) {
	file, err := elf.Open(path)
	if err != nil {
		var formatErr *elf.FormatError
		if errors.As(err, &formatErr) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotELFFile)
		}

		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	info := &ELFInfo{Header: file.FileHeader}

	for _, prog := range file.Progs {
		if prog.Type == elf.PT_INTERP {
			info.Dynamic = true
			break
		}
	}

	if !info.Dynamic {
		needed, _ := file.DynString(elf.DT_NEEDED)
		info.Dynamic = len(needed) > 0
	}

	return info, nil
}
