// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/aibor/pibuild/internal/kconfig"
	"github.com/aibor/pibuild/internal/manifest"
	"github.com/aibor/pibuild/internal/pipeline"
	"github.com/aibor/pibuild/internal/sys"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var stageDescriptions = map[pipeline.Stage]string{
	pipeline.StageFetch:       "Download and extract the busybox source",
	pipeline.StageScaffold:    "Create the root filesystem directory tree",
	pipeline.StageBuild:       "Configure, compile and install busybox",
	pipeline.StageRootfs:      "Add configuration files, device nodes and permissions",
	pipeline.StageRootfsImage: "Pack the root filesystem into an ext4 image (root)",
	pipeline.StageInitramfs:   "Create the initramfs archive",
	pipeline.StageFirmware:    "Clone or update the firmware repository",
	pipeline.StageBootfs:      "Pack the boot partition into a FAT32 image (root)",
	pipeline.StageManifest:    "Write the artifact manifest",
}

func newRootCommand(cfg IO) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pibuild",
		Short: "Build BusyBox based Raspberry Pi images",
		Long: `pibuild builds a BusyBox based root filesystem, an initramfs and the
boot and root partition images for a Raspberry Pi from a recipe file.

Stages can be run one by one or all at once. Stages creating disk images
require root privileges.

All persistent flags can also be provided via environment variable
PIBUILD_ARGS or via file ./.pibuild-args, with one argument per line.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging(cfg.Stderr, logLevel(opts.debug, opts.quiet))
		},
	}

	root.SetIn(cfg.Stdin)
	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)
	root.SetFlagErrorFunc(flagError)
	opts.register(root.PersistentFlags())

	root.AddCommand(
		newAllCommand(opts, cfg),
		newRunCommand(opts, cfg),
		newPatchConfigCommand(cfg),
		newDepsCommand(opts, cfg),
		newVerifyCommand(opts, cfg),
		newVersionCommand(cfg),
	)

	for _, stage := range pipeline.Stages() {
		root.AddCommand(newStageCommand(opts, cfg, stage))
	}

	return root
}

func newAllCommand(opts *options, cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run all stages",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd, opts, cfg, pipeline.Stages())
		},
	}
}

func newRunCommand(opts *options, cfg IO) *cobra.Command {
	names := make([]string, 0, len(pipeline.Stages()))
	for _, stage := range pipeline.Stages() {
		names = append(names, string(stage))
	}

	return &cobra.Command{
		Use:       "run STAGE...",
		Short:     "Run the given stages in the given order",
		Long:      "Run the given stages in the given order.\n\nStages: " + strings.Join(names, ", "),
		Args:      checkArgs(cobra.MinimumNArgs(1)),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages := make([]pipeline.Stage, len(args))
			for idx, arg := range args {
				if err := stages[idx].Set(arg); err != nil {
					return &ParseArgsError{msg: "stage", err: err}
				}
			}

			return runStages(cmd, opts, cfg, stages)
		},
	}
}

func newStageCommand(opts *options, cfg IO, stage pipeline.Stage) *cobra.Command {
	return &cobra.Command{
		Use:   string(stage),
		Short: stageDescriptions[stage],
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd, opts, cfg, []pipeline.Stage{stage})
		},
	}
}

func runStages(cmd *cobra.Command, opts *options, cfg IO, stages []pipeline.Stage) error {
	for _, stage := range stages {
		if !stage.RequiresRoot() {
			continue
		}

		// Fail before any long running stage if a later one can not run.
		if err := sys.RequireRoot(); err != nil {
			return &pipeline.StageError{Stage: stage, Err: err}
		}
	}

	prof, err := opts.loadProfile(cmd)
	if err != nil {
		return err
	}

	p := pipeline.New(prof)
	if !opts.quiet {
		p.Progress = cfg.Stderr
	}

	warnings, err := p.Run(cmd.Context(), stages...)
	if len(warnings) > 0 {
		slog.Warn("Finished with warnings", slog.Int("count", len(warnings)))

		for _, subject := range warnings.Subjects() {
			slog.Debug("Warning subject", slog.String("subject", subject))
		}
	}

	return err //nolint:wrapcheck
}

func newPatchConfigCommand(cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "patch-config FILE FEATURE...",
		Short: "Disable features in a kconfig style configuration file",
		Long: `Disable features in a kconfig style configuration file.

Features are given without the CONFIG_ prefix, in any case. Features that
are neither enabled nor disabled in the file are reported as warnings.`,
		Args: checkArgs(cobra.MinimumNArgs(2)),
		RunE: func(_ *cobra.Command, args []string) error {
			result, err := kconfig.Patch(afero.NewOsFs(), args[0], args[1:])
			if err != nil {
				return fmt.Errorf("patch: %w", err)
			}

			for _, feature := range result.Disabled {
				fmt.Fprintln(cfg.Stdout, "disabled", kconfig.Key(feature))
			}

			for _, feature := range result.AlreadyOff {
				fmt.Fprintln(cfg.Stdout, "already off", kconfig.Key(feature))
			}

			for _, feature := range result.Missing {
				slog.Warn("Feature not found",
					slog.String("feature", kconfig.Key(feature)),
					slog.String("file", args[0]),
				)
			}

			return nil
		},
	}
}

func newDepsCommand(opts *options, cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "deps BINARY",
		Short: "List the shared libraries a binary needs from the sysroot",
		Args:  checkArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateFilePath(args[0]); err != nil {
				return fmt.Errorf("binary: %w", err)
			}

			prof, err := opts.loadProfile(cmd)
			if err != nil {
				return err
			}

			resolver := prof.Resolver()
			libs, _ := resolver.Resolve(cmd.Context(), args[0])

			for lib := range libs.Libs() {
				fmt.Fprintln(cfg.Stdout, lib)
			}

			return nil
		},
	}
}

func newVerifyCommand(opts *options, cfg IO) *cobra.Command {
	var manifestPath FilePath

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Verify the artifacts against the manifest",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := manifestPath.String()
			if path == "" {
				prof, err := opts.loadProfile(cmd)
				if err != nil {
					return err
				}

				path = prof.ManifestPath()
			}

			mf, err := manifest.Read(path)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}

			var errs []error

			for _, artifact := range mf.Artifacts {
				if err := artifact.Verify(); err != nil {
					errs = append(errs, err)
					fmt.Fprintln(cfg.Stdout, "FAIL", artifact.Name)

					continue
				}

				fmt.Fprintln(cfg.Stdout, "OK  ", artifact.Name, artifact.Digest)
			}

			if len(errs) > 0 {
				return fmt.Errorf("%w: %w", ErrArtifactsInvalid, errors.Join(errs...))
			}

			return nil
		},
	}

	verify.Flags().Var(&manifestPath, "manifest",
		"manifest file (default is the one in the build directory)")

	return verify
}

func newVersionCommand(cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			buildInfo, ok := debug.ReadBuildInfo()
			if !ok {
				return ErrReadBuildInfo
			}

			fmt.Fprintf(cfg.Stdout, "Version: %s\n", buildInfo.Main.Version)

			return nil
		},
	}
}
