// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"

	"github.com/aibor/pibuild/internal/initramfs"
	"github.com/aibor/pibuild/internal/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	defaultRecipe = "busybox.yaml"

	jobsMin = 1
	jobsMax = 1024
)

// options are the persistent flags of the root command. Profile overrides
// are applied only if the flag was given.
type options struct {
	recipe       FilePath
	buildDir     FilePath
	archiver     initramfs.Archiver
	compression  initramfs.Compression
	installStyle profile.InstallStyle
	jobs         int

	debug bool
	quiet bool
}

func (o *options) register(flagSet *pflag.FlagSet) {
	o.recipe = defaultRecipe

	flagSet.VarP(&o.recipe, "recipe", "r",
		"recipe file describing the build")
	flagSet.Var(&o.buildDir, "build-dir",
		"directory for sources, trees and artifacts (overrides recipe)")
	flagSet.Var(&o.archiver, "archiver",
		"initramfs archiver: builtin, external (overrides recipe)")
	flagSet.Var(&o.compression, "compression",
		"initramfs compression: gzip, zstd, xz, none (overrides recipe)")
	flagSet.Var(&o.installStyle, "install-style",
		"busybox install style: prefix, install-dir (overrides recipe)")
	flagSet.VarP(&LimitedIntValue{Value: &o.jobs, Lower: jobsMin, Upper: jobsMax},
		"jobs", "j", "parallel make jobs (overrides recipe)")
	flagSet.BoolVar(&o.debug, "debug", false, "enable debug output")
	flagSet.BoolVarP(&o.quiet, "quiet", "q", false, "only print warnings and errors")
}

// loadProfile loads the recipe and applies the flag overrides. The result
// is validated again, as overrides may be invalid in combination.
func (o *options) loadProfile(cmd *cobra.Command) (profile.Profile, error) {
	prof, err := profile.Load(o.recipe.String())
	if err != nil {
		return prof, fmt.Errorf("load recipe: %w", err)
	}

	flags := cmd.Flags()

	if flags.Changed("build-dir") {
		prof.BuildDir = o.buildDir.String()
	}

	if flags.Changed("archiver") {
		prof.Archiver = o.archiver
	}

	if flags.Changed("compression") {
		prof.Compression = o.compression
	}

	if flags.Changed("install-style") {
		prof.InstallStyle = o.installStyle
	}

	if flags.Changed("jobs") {
		prof.Jobs = o.jobs
	}

	if err := prof.Validate(); err != nil {
		return prof, fmt.Errorf("validate: %w", err)
	}

	return prof, nil
}

func flagError(_ *cobra.Command, err error) error {
	return &ParseArgsError{msg: "flag parse", err: err}
}

// checkArgs wraps positional argument validation errors, so they are
// reported like flag errors.
func checkArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &ParseArgsError{msg: "arguments", err: err}
		}

		return nil
	}
}
