// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aibor/pibuild/internal/kconfig"
	"github.com/aibor/pibuild/internal/report"
	"github.com/aibor/pibuild/internal/sys"
)

const configFile = ".config"

// build configures, compiles and installs BusyBox into the root filesystem
// tree.
func (p *Pipeline) build(ctx context.Context) (report.Warnings, error) {
	var warnings report.Warnings

	prof := p.Profile
	src := prof.SourceDir()

	if !dirExists(src) {
		return nil, fmt.Errorf("%w: source directory %s", ErrMissingInput, src)
	}

	configPath := filepath.Join(src, configFile)

	data, err := os.ReadFile(prof.BusyboxConfig)
	if err != nil {
		return nil, fmt.Errorf("read busybox config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", configFile, err)
	}

	// oldconfig prompts for new symbols. An empty stdin accepts defaults.
	if err := p.make(ctx, strings.NewReader(""), "oldconfig"); err != nil {
		return nil, err
	}

	if len(prof.DisabledFeatures) > 0 {
		result, err := kconfig.Patch(p.fs, configPath, prof.DisabledFeatures)
		if err != nil {
			return nil, fmt.Errorf("patch %s: %w", configFile, err)
		}

		for _, feature := range result.Missing {
			warnings.AddHint(string(StageBuild), feature, "check the feature name",
				ErrUnknownFeature)
		}

		slog.Info("Patched configuration",
			slog.Int("disabled", len(result.Disabled)),
			slog.Int("already_off", len(result.AlreadyOff)),
			slog.Int("missing", len(result.Missing)),
		)
	}

	makeArgs, err := prof.MakeArgList()
	if err != nil {
		return warnings, err
	}

	jobs := "-j" + strconv.Itoa(max(prof.Jobs, 1))
	if err := p.make(ctx, nil, append([]string{jobs}, makeArgs...)...); err != nil {
		return warnings, err
	}

	installArgs, err := prof.InstallStyle.MakeArgs(src, prof.RootfsDir())
	if err != nil {
		return warnings, err
	}

	if err := p.make(ctx, nil, append(makeArgs, installArgs...)...); err != nil {
		return warnings, err
	}

	binary := filepath.Join(prof.RootfsDir(), "bin", "busybox")
	if !fileExists(binary) {
		return warnings, fmt.Errorf("%w: installed binary %s", ErrMissingInput, binary)
	}

	slog.Info("Installed busybox", slog.String("path", binary))

	return warnings, nil
}

func (p *Pipeline) make(ctx context.Context, stdin io.Reader, args ...string) error {
	cmd := sys.Command{
		Name:   "make",
		Args:   args,
		Dir:    p.Profile.SourceDir(),
		Env:    p.Profile.Env(),
		Stdin:  stdin,
		Stream: p.Progress,
	}

	if _, err := cmd.Run(ctx); err != nil {
		return fmt.Errorf("make %s: %w", strings.Join(args, " "), err)
	}

	return nil
}
