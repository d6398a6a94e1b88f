// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/aibor/pibuild/internal/sys"
	"golang.org/x/sync/errgroup"
)

// Archiver selects how the staged tree is serialized.
type Archiver string

// Supported archivers.
const (
	// Builtin writes the archive in process.
	Builtin Archiver = "builtin"
	// External pipes the listing into the host's cpio(1).
	External Archiver = "external"
)

func (a *Archiver) String() string {
	return string(*a)
}

// Set implements [github.com/spf13/pflag.Value].
func (a *Archiver) Set(s string) error {
	switch Archiver(s) {
	case Builtin, External:
		*a = Archiver(s)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownArchiver, s)
	}

	return nil
}

// Type implements [github.com/spf13/pflag.Value].
func (*Archiver) Type() string {
	return "archiver"
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (a *Archiver) UnmarshalText(text []byte) error {
	return a.Set(string(text))
}

// Archive serializes the tree at root as newc CPIO archive into out.
//
// The entries are taken from a NUL delimited listing of the tree. With
// [Builtin], device nodes of devices that are missing in the tree's "dev"
// directory are added to the archive directly, since the archive entry does
// not need the node to exist on the build host.
func (a Archiver) Archive(
	ctx context.Context,
	root string,
	out io.Writer,
	devices []devnode.Spec,
) error {
	switch a {
	case Builtin:
		return archiveBuiltin(ctx, root, out, devices)
	case External:
		return archiveExternal(ctx, root, out)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownArchiver, a)
	}
}

func archiveBuiltin(
	ctx context.Context,
	root string,
	out io.Writer,
	devices []devnode.Spec,
) error {
	reader, writer := io.Pipe()
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := WriteListing(ctx, writer, root)
		_ = writer.CloseWithError(err)

		return err
	})

	group.Go(func() error {
		archive := NewCPIOWriter(out)

		err := writeArchive(root, reader, archive, devices)
		if err != nil {
			_ = reader.CloseWithError(err)
			return err
		}

		return archive.Close()
	})

	return group.Wait()
}

func archiveExternal(ctx context.Context, root string, out io.Writer) error {
	var listing bytes.Buffer

	if err := WriteListing(ctx, &listing, root); err != nil {
		return err
	}

	cmd := sys.Command{
		Name:   "cpio",
		Args:   []string{"--null", "-o", "--format=newc"},
		Dir:    root,
		Stdin:  &listing,
		Stdout: out,
	}

	if _, err := cmd.Run(ctx); err != nil {
		return fmt.Errorf("cpio: %w", err)
	}

	return nil
}
