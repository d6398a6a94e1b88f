// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package manifest records the artifacts of a build with their digests.
package manifest

import (
	_ "crypto/sha256" // Registers the canonical digest algorithm.
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// ErrDigestMismatch is returned if an artifact's content does not match
// its recorded digest.
var ErrDigestMismatch = errors.New("digest mismatch")

// Artifact is a single build output file.
type Artifact struct {
	Name   string        `yaml:"name"`
	Path   string        `yaml:"path"`
	Size   int64         `yaml:"size"`
	Digest digest.Digest `yaml:"digest"`
}

// Verify checks that the file at the artifact's path has the recorded
// digest.
func (a Artifact) Verify() error {
	if err := a.Digest.Validate(); err != nil {
		return fmt.Errorf("artifact %s: %w", a.Name, err)
	}

	actual, err := fileDigest(a.Path)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", a.Name, err)
	}

	if actual != a.Digest {
		return fmt.Errorf("artifact %s: %w: %s != %s", a.Name, ErrDigestMismatch, actual, a.Digest)
	}

	return nil
}

// Manifest describes a single build.
type Manifest struct {
	BuildID        string     `yaml:"build_id"`
	Created        time.Time  `yaml:"created"`
	BusyboxVersion string     `yaml:"busybox_version"`
	Arch           string     `yaml:"arch"`
	Artifacts      []Artifact `yaml:"artifacts"`
	// Warnings are the soft failures of the build.
	Warnings []string `yaml:"warnings,omitempty"`
}

// New creates a manifest with a random build ID.
func New(version, arch string) *Manifest {
	return &Manifest{
		BuildID:        uuid.NewString(),
		Created:        time.Now().UTC().Truncate(time.Second),
		BusyboxVersion: version,
		Arch:           arch,
	}
}

// Add records the file at path. The name defaults to the file's base name.
func (m *Manifest) Add(name, path string) error {
	if name == "" {
		name = filepath.Base(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", name, err)
	}

	sum, err := fileDigest(path)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", name, err)
	}

	m.Artifacts = append(m.Artifacts, Artifact{
		Name:   name,
		Path:   path,
		Size:   info.Size(),
		Digest: sum,
	})

	return nil
}

// Write writes the manifest as YAML file.
func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Read reads a manifest file.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &manifest, nil
}

func fileDigest(path string) (digest.Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	sum, err := digest.Canonical.FromReader(file)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}

	return sum, nil
}
