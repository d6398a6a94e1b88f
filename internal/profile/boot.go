// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"fmt"
	"strings"
	"text/template"
)

// Boot partition file names read by the firmware.
const (
	CmdlineFile = "cmdline.txt"
	ConfigFile  = "config.txt"
)

type bootParams struct {
	RootDevice string
	Initramfs  string
}

// BootFiles renders the kernel command line and the firmware configuration.
// It returns file contents by file name.
func (p Profile) BootFiles() (map[string]string, error) {
	params := bootParams{
		RootDevice: p.RootDevice,
		Initramfs:  p.InitramfsName(),
	}

	cmdline, err := render(CmdlineFile, p.KernelCmdline, params)
	if err != nil {
		return nil, err
	}

	config, err := render(ConfigFile, p.FirmwareConfig, params)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		CmdlineFile: strings.TrimSpace(cmdline) + "\n",
		ConfigFile:  config,
	}, nil
}

func render(name, text string, params bootParams) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: %s template: %w", ErrInvalidValue, name, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, params); err != nil {
		return "", fmt.Errorf("%w: %s template: %w", ErrInvalidValue, name, err)
	}

	return out.String(), nil
}
