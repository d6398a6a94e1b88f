// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aibor/pibuild/internal/pipeline"
	"github.com/aibor/pibuild/internal/sys"
)

const localConfigFile = ".pibuild-args"

// Exit codes of [Run].
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func handleRunError(err error, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, &ParseArgsError{}) {
		fmt.Fprintf(stderr, "Error: %v\nRun 'pibuild --help' for usage.\n", err)
		return ExitUsage
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		slog.Error("Stage failed", slog.String("stage", string(stageErr.Stage)))
	}

	var cmdErr *sys.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stdout != "" {
		slog.Debug("Command stdout",
			slog.String("command", cmdErr.Name),
			slog.String("stdout", cmdErr.Stdout),
		)
	}

	if errors.Is(err, sys.ErrNotRoot) {
		slog.Warn("Disk image stages need root privileges, try running with sudo")
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	return ExitError
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, slog.LevelInfo)

	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return handleRunError(err, cfg.Stderr)
	}

	root := newRootCommand(cfg)
	root.SetArgs(args)

	err = root.ExecuteContext(ctx)

	return handleRunError(err, cfg.Stderr)
}
