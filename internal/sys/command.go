// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Command describes an external tool invocation.
type Command struct {
	// Name of the executable. Looked up in PATH if it contains no path
	// separator.
	Name string
	Args []string
	// Dir is the working directory. The current directory is used if empty.
	Dir string
	// Env is added to the environment of the current process. Later entries
	// win over earlier ones and over the inherited environment.
	Env []string
	// Stdin is connected to the standard input of the process if set.
	Stdin io.Reader
	// Stdout replaces the stdout capture buffer if set, for tools producing
	// large binary output. [Output.Stdout] is empty then.
	Stdout io.Writer
	// Stream receives stdout in addition to the capture buffer, for tools
	// that report progress while running.
	Stream io.Writer
}

// Output is the captured output of a successful [Command] run.
type Output struct {
	Stdout string
	Stderr string
}

// String returns the command line as it would be typed in a shell.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Run executes the command and waits for it to finish.
//
// It returns a [CommandError] carrying the captured output if the process
// could not be started or exited with non-zero exit code. A missing
// executable can be detected with [errors.Is] and [exec.ErrNotFound].
func (c Command) Run(ctx context.Context) (*Output, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	switch {
	case c.Stdout != nil:
		cmd.Stdout = c.Stdout
	case c.Stream != nil:
		cmd.Stdout = io.MultiWriter(&stdoutBuf, c.Stream)
	}

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	slog.Debug("Run command",
		slog.String("command", c.String()),
		slog.String("dir", c.Dir),
	)

	err := cmd.Run()
	if err != nil {
		return nil, &CommandError{
			Name:   c.Name,
			Args:   c.Args,
			Err:    err,
			Stdout: stdoutBuf.String(),
			Stderr: stderrBuf.String(),
		}
	}

	output := &Output{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if output.Stderr != "" {
		slog.Debug("Command stderr",
			slog.String("command", c.Name),
			slog.String("stderr", output.Stderr),
		)
	}

	return output, nil
}
