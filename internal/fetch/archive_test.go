package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// fakeDownloader writes canned payloads keyed by remote path.
type fakeDownloader struct {
	payloads map[string][]byte
	requests []string
}

func (f *fakeDownloader) Download(_ context.Context, remotePath, localPath string) error {
	f.requests = append(f.requests, remotePath)
	payload, ok := f.payloads[remotePath]
	if !ok {
		return os.ErrNotExist
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(localPath, payload, 0o644)
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func freezeRunDate(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestArchiveSource_Fetch(t *testing.T) {
	freezeRunDate(t)
	inputDir := t.TempDir()

	archive := tarGz(t, map[string]string{
		"glofas_discharge_ZambiaRedcross_2026082900.txt":           "name time dis member\n",
		"glofas_returnlevels_ldd_ups_ZambiaRedcross_2026082900.txt": "Name lat lon 2y 5y 20y\n",
	})
	dl := &fakeDownloader{payloads: map[string][]byte{
		"/glofas/glofas_forecast_zambia_2026082900.tar.gz": archive,
	}}
	src := NewArchiveSource(dl, &config.CountrySettings{
		GlofasFilename: "glofas_forecast_zambia",
		FTPPath:        "/glofas/",
	}, inputDir, slog.Default())

	require.NoError(t, src.Fetch(context.Background()))

	assert.Equal(t, []string{"/glofas/glofas_forecast_zambia_2026082900.tar.gz"}, dl.requests)
	for _, name := range []string{
		"glofas_discharge_ZambiaRedcross_2026082900.txt",
		"glofas_returnlevels_ldd_ups_ZambiaRedcross_2026082900.txt",
	} {
		content, err := os.ReadFile(filepath.Join(inputDir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, content)
	}
}

func TestArchiveSource_Fetch_DownloadFails(t *testing.T) {
	freezeRunDate(t)
	dl := &fakeDownloader{}
	src := NewArchiveSource(dl, &config.CountrySettings{
		GlofasFilename: "glofas_forecast_zambia",
		FTPPath:        "/glofas/",
	}, t.TempDir(), slog.Default())

	require.Error(t, src.Fetch(context.Background()))
}

func TestUnpackArchive_RejectsEscapingEntry(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.tar.gz")
	require.NoError(t, os.WriteFile(archivePath, tarGz(t, map[string]string{
		"../outside.txt": "nope",
	}), 0o644))

	err := unpackArchive(archivePath, filepath.Join(dir, "input"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes destination")
}

func TestCleanDirs(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "glofas_discharge_old.txt")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))
	missing := filepath.Join(dir, "fresh", "glofasgrid")

	require.NoError(t, CleanDirs(dir, missing))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale file removed")
	info, err := os.Stat(missing)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "missing dir created")
}
