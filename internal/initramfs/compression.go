// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression is the compression applied to the archive. All of them are
// supported by the Linux kernel for initramfs decompression.
type Compression string

// Supported compressions.
const (
	Gzip            Compression = "gzip"
	Zstd            Compression = "zstd"
	XZ              Compression = "xz"
	NoneCompression Compression = "none"
)

func (c *Compression) String() string {
	return string(*c)
}

// Set implements [github.com/spf13/pflag.Value].
func (c *Compression) Set(s string) error {
	switch Compression(s) {
	case Gzip, Zstd, XZ, NoneCompression:
		*c = Compression(s)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCompression, s)
	}

	return nil
}

// Type implements [github.com/spf13/pflag.Value].
func (*Compression) Type() string {
	return "compression"
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *Compression) UnmarshalText(text []byte) error {
	return c.Set(string(text))
}

// Ext returns the file name extension for the compression.
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// NewWriter returns a compressing writer writing into w. The caller must
// close it to flush all data.
func (c Compression) NewWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case Zstd:
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderConcurrency(1),
		)
	case XZ:
		// The kernel decompressor supports CRC32 checks only.
		config := xz.WriterConfig{CheckSum: xz.CRC32}
		return config.NewWriter(w)
	case NoneCompression:
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
