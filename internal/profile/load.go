// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the recipe file at path. Relative paths in the recipe that
// refer to inputs are resolved against the directory of the file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read recipe: %w", err)
	}

	profile, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return Profile{}, fmt.Errorf("recipe %s: %w", path, err)
	}

	slog.Debug("Loaded recipe",
		slog.String("path", path),
		slog.String("version", profile.BusyboxVersion),
		slog.String("arch", string(profile.Arch)),
	)

	return profile, nil
}

// Parse decodes a recipe on top of the [Default] profile and validates the
// result. Unknown keys are rejected.
func Parse(data []byte, baseDir string) (Profile, error) {
	profile := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(&profile)
	if err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("decode: %w", err)
	}

	if profile.BusyboxConfig != "" && !filepath.IsAbs(profile.BusyboxConfig) {
		profile.BusyboxConfig = filepath.Join(baseDir, profile.BusyboxConfig)
	}

	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}

	return profile, nil
}
