// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceServer(tb testing.TB, version string) (*httptest.Server, *atomic.Int32) {
	tb.Helper()

	var requests atomic.Int32

	archive := compressGzip(tb, tarArchive(tb, sourceTree(version)...))

	mux := http.NewServeMux()
	mux.HandleFunc("/busybox-"+version+".tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write(archive)
	})

	srv := httptest.NewServer(mux)
	tb.Cleanup(srv.Close)

	return srv, &requests
}

func TestFetch(t *testing.T) {
	srv, requests := sourceServer(t, "1.36.1")

	prof := testProfile(t)
	prof.BusyboxURL = srv.URL + "/busybox-1.36.1.tar.gz"

	p := New(prof)
	p.Client = srv.Client()

	warnings, err := p.fetch(t.Context())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.FileExists(t, filepath.Join(prof.BuildDir, "busybox-1.36.1.tar.gz"))
	assert.FileExists(t, filepath.Join(prof.SourceDir(), "Makefile"))
	assert.NoFileExists(t, prof.SourceArchive()+".part")
	assert.EqualValues(t, 1, requests.Load())

	t.Run("cached", func(t *testing.T) {
		_, err := p.fetch(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 1, requests.Load())
	})

	t.Run("extracts again", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(prof.SourceDir()))

		_, err := p.fetch(t.Context())
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(prof.SourceDir(), "Makefile"))
		assert.EqualValues(t, 1, requests.Load())
	})
}

func TestFetchNotFound(t *testing.T) {
	srv, _ := sourceServer(t, "1.36.1")

	prof := testProfile(t)
	prof.BusyboxURL = srv.URL + "/busybox-9.9.9.tar.gz"

	p := New(prof)
	p.Client = srv.Client()

	_, err := p.fetch(t.Context())
	require.ErrorIs(t, err, ErrDownload)

	assert.NoFileExists(t, prof.SourceArchive())
	assert.NoFileExists(t, prof.SourceArchive()+".part")
}

func TestFetchWrongTopLevelDir(t *testing.T) {
	srv, _ := sourceServer(t, "1.36.0")

	prof := testProfile(t)
	prof.BusyboxURL = srv.URL + "/busybox-1.36.0.tar.gz"

	p := New(prof)
	p.Client = srv.Client()

	_, err := p.fetch(t.Context())
	require.ErrorIs(t, err, ErrMissingInput)
}
