// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/aibor/pibuild/internal/perms"
)

// Validate checks that all required values are set and all values are in
// range.
func (p Profile) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"busybox_version", p.BusyboxVersion},
		{"arch", string(p.Arch)},
		{"cross_compile_prefix", p.CrossCompile},
		{"busybox_config", p.BusyboxConfig},
		{"build_dir", p.BuildDir},
	}

	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field.name)
		}
	}

	if err := validateURL(p.SourceURL()); err != nil {
		return fmt.Errorf("%w: busybox_download_url: %w", ErrInvalidValue, err)
	}

	sizes := []struct {
		name  string
		value int
	}{
		{"rootfs_size_mb", p.RootfsSizeMB},
		{"bootfs_size_mb", p.BootfsSizeMB},
		{"jobs", p.Jobs},
	}

	for _, field := range sizes {
		if field.value <= 0 {
			return fmt.Errorf("%w: %s must be positive: %d", ErrInvalidValue, field.name, field.value)
		}
	}

	if _, err := p.MakeArgList(); err != nil {
		return err
	}

	if _, err := p.BootFiles(); err != nil {
		return err
	}

	for _, spec := range slices.Concat(p.DeviceNodes, p.InitramfsDeviceNodes) {
		if spec.Name == "" {
			return fmt.Errorf("%w: device node without name", ErrMissingField)
		}

		if _, err := spec.Mode(); err != nil {
			return fmt.Errorf("%w: device node %s: %w", ErrInvalidValue, spec.Name, err)
		}
	}

	return validateRules(p.Permissions)
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	return nil
}

func validateRules(rules perms.Rules) error {
	for _, override := range rules.Overrides {
		if override.Path == "" {
			return fmt.Errorf("%w: permission override without path", ErrMissingField)
		}
	}

	return nil
}
