// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/aibor/pibuild/internal/profile"
	"github.com/aibor/pibuild/internal/sys"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name     string
	typeflag byte
	body     string
	linkname string
	mode     int64
}

func tarArchive(tb testing.TB, entries ...tarEntry) []byte {
	tb.Helper()

	var buf bytes.Buffer

	writer := tar.NewWriter(&buf)

	for _, entry := range entries {
		mode := entry.mode
		if mode == 0 {
			mode = 0o644
		}

		hdr := &tar.Header{
			Name:     entry.name,
			Typeflag: entry.typeflag,
			Linkname: entry.linkname,
			Mode:     mode,
			Size:     int64(len(entry.body)),
		}

		if entry.typeflag == tar.TypeXGlobalHeader {
			hdr = &tar.Header{
				Typeflag:   tar.TypeXGlobalHeader,
				PAXRecords: map[string]string{"comment": entry.body},
			}
		}

		require.NoError(tb, writer.WriteHeader(hdr))

		if entry.typeflag == tar.TypeReg {
			_, err := writer.Write([]byte(entry.body))
			require.NoError(tb, err)
		}
	}

	require.NoError(tb, writer.Close())

	return buf.Bytes()
}

func sourceTree(version string) []tarEntry {
	dir := "busybox-" + version + "/"

	return []tarEntry{
		{name: dir, typeflag: tar.TypeDir, mode: 0o755},
		{name: dir + "Makefile", typeflag: tar.TypeReg, body: "all:\n"},
	}
}

func testProfile(tb testing.TB) profile.Profile {
	tb.Helper()

	prof := profile.Default()
	prof.BusyboxVersion = "1.36.1"
	prof.Arch = sys.ARM64
	prof.CrossCompile = "aarch64-linux-gnu-"
	prof.BuildDir = tb.TempDir()
	prof.Jobs = 2

	return prof
}
