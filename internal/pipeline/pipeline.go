// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aibor/pibuild/internal/profile"
	"github.com/aibor/pibuild/internal/report"
	"github.com/spf13/afero"
)

const dirMode = 0o755

type stageFunc func(ctx context.Context) (report.Warnings, error)

// Pipeline runs build stages for a single profile.
type Pipeline struct {
	Profile profile.Profile
	// Client is used for downloads.
	Client *http.Client
	// Progress receives the output of long running tools. Optional.
	Progress io.Writer

	fs       afero.Fs
	warnings report.Warnings
}

// New creates a pipeline for the given profile.
func New(p profile.Profile) *Pipeline {
	return &Pipeline{
		Profile: p,
		Client:  http.DefaultClient,
		fs:      afero.NewOsFs(),
	}
}

func (p *Pipeline) stageFunc(stage Stage) (stageFunc, error) {
	funcs := map[Stage]stageFunc{
		StageFetch:       p.fetch,
		StageScaffold:    p.scaffold,
		StageBuild:       p.build,
		StageRootfs:      p.rootfs,
		StageRootfsImage: p.rootfsImage,
		StageInitramfs:   p.initramfs,
		StageFirmware:    p.firmware,
		StageBootfs:      p.bootfs,
		StageManifest:    p.manifest,
	}

	fn, exists := funcs[stage]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}

	return fn, nil
}

// Run runs the given stages in the given order. All stages are run if none
// are given. It stops at the first stage that fails and returns a
// [StageError]. The warnings of all stages run are returned in any case.
func (p *Pipeline) Run(ctx context.Context, stages ...Stage) (report.Warnings, error) {
	if len(stages) == 0 {
		stages = Stages()
	}

	p.warnings = nil

	if err := os.MkdirAll(p.Profile.BuildDir, dirMode); err != nil {
		return nil, fmt.Errorf("create build dir: %w", err)
	}

	for _, stage := range stages {
		fn, err := p.stageFunc(stage)
		if err != nil {
			return p.warnings, err
		}

		slog.Info("Running stage", slog.String("stage", string(stage)))

		start := time.Now()

		warnings, err := fn(ctx)
		p.warnings.Append(warnings)

		if err != nil {
			return p.warnings, &StageError{Stage: stage, Err: err}
		}

		slog.Info("Stage finished",
			slog.String("stage", string(stage)),
			slog.Int("warnings", len(warnings)),
			slog.String("duration", time.Since(start).Round(time.Millisecond).String()),
		)
	}

	return p.warnings, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
