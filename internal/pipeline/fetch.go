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

	"github.com/aibor/pibuild/internal/report"
)

// fetch downloads the source archive unless it exists and extracts it
// unless the source directory exists.
func (p *Pipeline) fetch(ctx context.Context) (report.Warnings, error) {
	archive := p.Profile.SourceArchive()
	sourceDir := p.Profile.SourceDir()

	if fileExists(archive) {
		slog.Info("Source archive present", slog.String("path", archive))
	} else {
		if err := download(ctx, p.Client, p.Profile.SourceURL(), archive); err != nil {
			return nil, err
		}
	}

	if dirExists(sourceDir) {
		slog.Info("Source directory present", slog.String("path", sourceDir))
		return nil, nil
	}

	if err := extract(archive, p.Profile.BuildDir); err != nil {
		return nil, err
	}

	if !dirExists(sourceDir) {
		return nil, fmt.Errorf("%w: archive %s has no %s", ErrMissingInput, archive, sourceDir)
	}

	return nil, nil
}

// download writes the content at url to path. The data is written to a
// temporary file first, so an interrupted download is not mistaken for a
// complete one.
func download(ctx context.Context, client *http.Client, url, path string) error {
	slog.Info("Downloading", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: %s", ErrDownload, url, resp.Status)
	}

	partial := path + ".part"

	file, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("create %s: %w", partial, err)
	}

	size, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}

	if err := os.Rename(partial, path); err != nil {
		return fmt.Errorf("rename download: %w", err)
	}

	slog.Info("Download complete",
		slog.String("path", path),
		slog.Int("bytes", int(size)),
	)

	return nil
}
