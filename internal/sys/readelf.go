// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"context"
	"regexp"
	"time"
)

const readelfTimeout = 10 * time.Second

var neededPattern = regexp.MustCompile(`Shared library: \[(.*?)\]`)

// Needed lists the shared objects declared as needed in the dynamic section
// of the ELF file with the given path.
//
// It invokes "<prefix>readelf -d" of the cross toolchain. It returns a
// [CommandError] in case the tool is not available or exits with non-zero
// exit code.
func Needed(ctx context.Context, prefix, path string) ([]string, error) {
	ctx, stop := context.WithTimeout(ctx, readelfTimeout)
	defer stop()

	cmd := Command{
		Name: prefix + "readelf",
		Args: []string{"-d", path},
	}

	output, err := cmd.Run(ctx)
	if err != nil {
		return nil, err
	}

	return parseNeeded(output.Stdout), nil
}

// parseNeeded extracts all sonames from "readelf -d" output in order of
// appearance.
func parseNeeded(readelfOutput string) []string {
	var sonames []string

	for _, match := range neededPattern.FindAllStringSubmatch(readelfOutput, -1) {
		sonames = append(sonames, match[1])
	}

	return sonames
}
