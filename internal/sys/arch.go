// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"debug/elf"
	"fmt"
)

// Arch is a target architecture as named by the Linux kernel build system
// in its ARCH variable.
type Arch string

// Supported target architectures.
const (
	ARM64 Arch = "arm64"
	ARM   Arch = "arm"
	X86   Arch = "x86"
	RISCV Arch = "riscv"
)

var archAliases = map[string]Arch{
	"arm64":   ARM64,
	"aarch64": ARM64,
	"arm":     ARM,
	"x86":     X86,
	"x86_64":  X86,
	"amd64":   X86,
	"riscv":   RISCV,
	"riscv64": RISCV,
}

func (a *Arch) String() string {
	return string(*a)
}

// Set implements [flag.Value]. Common aliases are mapped to the kernel name.
func (a *Arch) Set(s string) error {
	arch, exists := archAliases[s]
	if !exists {
		return fmt.Errorf("%w: %s", ErrArchNotSupported, s)
	}

	*a = arch

	return nil
}

// Type implements [github.com/spf13/pflag.Value].
func (*Arch) Type() string {
	return "arch"
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (a *Arch) UnmarshalText(text []byte) error {
	return a.Set(string(text))
}

// Machines returns the ELF machine types that run on the architecture.
func (a *Arch) Machines() []elf.Machine {
	switch *a {
	case ARM64:
		return []elf.Machine{elf.EM_AARCH64}
	case ARM:
		return []elf.Machine{elf.EM_ARM}
	case X86:
		return []elf.Machine{elf.EM_X86_64, elf.EM_386}
	case RISCV:
		return []elf.Machine{elf.EM_RISCV}
	default:
		return nil
	}
}
