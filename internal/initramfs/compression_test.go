// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/aibor/pibuild/internal/initramfs"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestCompression(t *testing.T) {
	payload := bytes.Repeat([]byte("initramfs payload "), 512)

	tests := []struct {
		compression initramfs.Compression
		ext         string
		decompress  func(t *testing.T, r io.Reader) []byte
	}{
		{
			compression: initramfs.Gzip,
			ext:         ".gz",
			decompress: func(t *testing.T, r io.Reader) []byte {
				t.Helper()

				reader, err := gzip.NewReader(r)
				require.NoError(t, err)

				data, err := io.ReadAll(reader)
				require.NoError(t, err)

				return data
			},
		},
		{
			compression: initramfs.Zstd,
			ext:         ".zst",
			decompress: func(t *testing.T, r io.Reader) []byte {
				t.Helper()

				reader, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
				require.NoError(t, err)
				defer reader.Close()

				data, err := io.ReadAll(reader)
				require.NoError(t, err)

				return data
			},
		},
		{
			compression: initramfs.XZ,
			ext:         ".xz",
			decompress: func(t *testing.T, r io.Reader) []byte {
				t.Helper()

				reader, err := xz.NewReader(r)
				require.NoError(t, err)

				data, err := io.ReadAll(reader)
				require.NoError(t, err)

				return data
			},
		},
		{
			compression: initramfs.NoneCompression,
			ext:         "",
			decompress: func(t *testing.T, r io.Reader) []byte {
				t.Helper()

				data, err := io.ReadAll(r)
				require.NoError(t, err)

				return data
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.compression), func(t *testing.T) {
			assert.Equal(t, tt.ext, tt.compression.Ext())

			var compressed bytes.Buffer

			writer, err := tt.compression.NewWriter(&compressed)
			require.NoError(t, err)

			_, err = writer.Write(payload)
			require.NoError(t, err)
			require.NoError(t, writer.Close())

			assert.Equal(t, payload, tt.decompress(t, &compressed))
		})
	}
}

func TestCompressionUnknown(t *testing.T) {
	_, err := initramfs.Compression("lz4").NewWriter(io.Discard)
	require.ErrorIs(t, err, initramfs.ErrUnknownCompression)

	var compression initramfs.Compression

	err = compression.UnmarshalText([]byte("lz4"))
	require.ErrorIs(t, err, initramfs.ErrUnknownCompression)

	require.NoError(t, compression.UnmarshalText([]byte("xz")))
	assert.Equal(t, initramfs.XZ, compression)
}
