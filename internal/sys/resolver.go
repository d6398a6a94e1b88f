// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/pibuild/internal/report"
)

const resolveStage = "resolve"

// Resolver locates the shared objects a cross-compiled binary needs inside
// the sysroot of the cross toolchain.
type Resolver struct {
	// Prefix is the cross toolchain prefix, like "aarch64-linux-gnu-".
	Prefix string
	// Sysroot is the root directory of the cross toolchain.
	Sysroot string
	// Arch is optional. If set, binaries built for other machines are
	// reported.
	Arch Arch
}

// Triple returns the target triple, which is the prefix without the
// trailing dash.
func (r Resolver) Triple() string {
	return strings.TrimSuffix(r.Prefix, "-")
}

// SearchPaths returns the existing library directories in the sysroot in the
// order they are searched.
func (r Resolver) SearchPaths() []string {
	if r.Sysroot == "" {
		return nil
	}

	root := r.Sysroot
	triple := r.Triple()
	libcDir := filepath.Join(root, triple, "libc")

	candidates := []string{
		libcDir,
		filepath.Join(root, triple, "lib"),
		filepath.Join(root, "lib"),
		filepath.Join(root, "usr", "lib"),
		filepath.Join(root, "usr", triple, "lib"),
		filepath.Join(root, "usr", triple, "libc"),
	}

	if isDir(libcDir) {
		candidates = append(candidates,
			filepath.Join(libcDir, "lib"),
			filepath.Join(libcDir, "usr", "lib"),
		)
	} else if triple != "" {
		candidates = append(candidates, tripleLibDirs(root, triple)...)
	}

	paths := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if !slices.Contains(paths, candidate) && isDir(candidate) {
			paths = append(paths, candidate)
		}
	}

	return paths
}

// Resolve resolves the needed shared objects of the given binary.
//
// Resolution never fails hard. A missing sysroot, a missing or failing
// readelf tool and unresolved sonames are reported as warnings. Statically
// linked binaries resolve to an empty collection without warning.
func (r Resolver) Resolve(
	ctx context.Context,
	binary string,
) (LibCollection, report.Warnings) {
	var (
		libs     LibCollection
		warnings report.Warnings
	)

	if r.Sysroot == "" {
		warnings.Add(resolveStage, binary, ErrNoSysroot)
		return libs, warnings
	}

	info, err := ReadELFInfo(binary)

	switch {
	case errors.Is(err, ErrNotELFFile):
		slog.Debug("Not an ELF file, leaving it to readelf",
			slog.String("path", binary))
	case err != nil:
		warnings.Add(resolveStage, binary, err)
		return libs, warnings
	case !info.Dynamic:
		slog.Debug("Statically linked, no libraries needed",
			slog.String("path", binary))

		return libs, warnings
	case r.Arch != "":
		if err := ValidateELF(info.Header, r.Arch); err != nil {
			warnings.Add(resolveStage, binary, err)
		}
	}

	sonames, err := Needed(ctx, r.Prefix, binary)
	if err != nil {
		warnings.AddHint(resolveStage, binary,
			"is the cross toolchain installed?", err)

		return libs, warnings
	}

	searchPaths := r.SearchPaths()

	for _, soname := range sonames {
		path, found := lookup(searchPaths, soname)
		if !found {
			libs.AddUnresolved(soname)
			warnings.Add(resolveStage, soname, ErrLibNotFound)

			continue
		}

		if libs.Add(soname, path) {
			slog.Debug("Resolved shared object",
				slog.String("soname", soname),
				slog.String("path", path),
			)
		}
	}

	return libs, warnings
}

func lookup(searchPaths []string, soname string) (string, bool) {
	for _, dir := range searchPaths {
		path := filepath.Join(dir, soname)
		if _, err := os.Lstat(path); err == nil {
			return path, true
		}
	}

	return "", false
}

// tripleLibDirs finds directories anywhere below root whose name starts with
// the triple and that have a "lib" subdirectory.
func tripleLibDirs(root, triple string) []string {
	var dirs []string

	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		if path == root || !entry.IsDir() {
			return nil
		}

		if strings.HasPrefix(entry.Name(), triple) &&
			isDir(filepath.Join(path, "lib")) {
			dirs = append(dirs,
				filepath.Join(path, "lib"),
				filepath.Join(path, "usr", "lib"),
			)
		}

		return nil
	})

	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
