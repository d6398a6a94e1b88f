// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/aibor/pibuild/internal/report"
	"github.com/aibor/pibuild/internal/sys"
)

// Config describes an initramfs build.
type Config struct {
	// OutputDir receives the archive. The staging directory is created in
	// there as well.
	OutputDir   string
	Busybox     string
	AppletRoot  string
	Resolver    sys.Resolver
	Devices     []devnode.Spec
	RootDevice  string
	Archiver    Archiver
	Compression Compression
}

// OutputPath returns the path of the archive file.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, "initramfs"+c.Compression.Ext())
}

// Build stages the runtime tree, serializes and compresses it and returns
// the path of the archive.
//
// The staging directory is removed in any case. Failure to remove it is
// reported as warning.
func Build(ctx context.Context, cfg Config) (_ string, warnings report.Warnings, _ error) {
	if _, err := os.Stat(cfg.Busybox); err != nil {
		return "", nil, fmt.Errorf("busybox binary: %w", err)
	}

	stageDir, err := os.MkdirTemp(cfg.OutputDir, "initramfs_staging_")
	if err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}

	defer func() {
		slog.Debug("Removing staging directory", slog.String("path", stageDir))

		if err := os.RemoveAll(stageDir); err != nil {
			warnings.AddHint(stage, stageDir, "remove it manually", err)
		}
	}()

	libs, resolveWarnings := cfg.Resolver.Resolve(ctx, cfg.Busybox)
	warnings.Append(resolveWarnings)

	stageWarnings, err := Stage(ctx, stageDir, StageSpec{
		Busybox:    cfg.Busybox,
		AppletRoot: cfg.AppletRoot,
		Libs:       slices.Collect(libs.Libs()),
		Devices:    cfg.Devices,
		RootDevice: cfg.RootDevice,
	})
	warnings.Append(stageWarnings)

	if err != nil {
		return "", warnings, fmt.Errorf("stage: %w", err)
	}

	outputPath := cfg.OutputPath()

	if err := writeArchiveFile(ctx, outputPath, stageDir, cfg); err != nil {
		return "", warnings, err
	}

	slog.Info("Created initramfs archive",
		slog.String("path", outputPath),
		slog.String("archiver", string(cfg.Archiver)),
		slog.String("compression", string(cfg.Compression)),
	)

	return outputPath, warnings, nil
}

func writeArchiveFile(ctx context.Context, path, stageDir string, cfg Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	err = writeCompressed(ctx, file, stageDir, cfg)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write archive: %w", err)
	}

	return nil
}

func writeCompressed(ctx context.Context, file *os.File, stageDir string, cfg Config) error {
	compressor, err := cfg.Compression.NewWriter(file)
	if err != nil {
		return err
	}

	err = cfg.Archiver.Archive(ctx, stageDir, compressor, cfg.Devices)
	if closeErr := compressor.Close(); err == nil {
		err = closeErr
	}

	return err
}
