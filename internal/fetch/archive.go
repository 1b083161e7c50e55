package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// ArchiveSource fetches the single compressed forecast archive
// <glofasFilename>_<YYYYMMDD>00.tar.gz and unpacks it into the input
// directory. Used by the station-report countries.
type ArchiveSource struct {
	client   Downloader
	settings *config.CountrySettings
	inputDir string
	logger   *slog.Logger
}

// NewArchiveSource builds an ArchiveSource writing into inputDir.
func NewArchiveSource(client Downloader, settings *config.CountrySettings, inputDir string, logger *slog.Logger) *ArchiveSource {
	return &ArchiveSource{
		client:   client,
		settings: settings,
		inputDir: inputDir,
		logger:   logger,
	}
}

// Fetch downloads and unpacks the current cycle's archive.
func (s *ArchiveSource) Fetch(ctx context.Context) error {
	date := domain.RunDate().Format("20060102")
	filename := fmt.Sprintf("%s_%s00.tar.gz", s.settings.GlofasFilename, date)
	remote := path.Join(s.settings.FTPPath, filename)
	local := filepath.Join(s.inputDir, filename)

	if err := s.client.Download(ctx, remote, local); err != nil {
		return err
	}
	if err := unpackArchive(local, s.inputDir); err != nil {
		return err
	}
	s.logger.Info("forecast archive unpacked", "archive", filename)
	return nil
}

// unpackArchive extracts a tar.gz into destDir. Entries that would escape
// destDir are rejected.
func unpackArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", archivePath, err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("extract dir %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			_, err = io.Copy(out, tr)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
		default:
			// Symlinks and specials have no business in a forecast archive.
			return fmt.Errorf("archive entry %q has unsupported type %d", hdr.Name, hdr.Typeflag)
		}
	}
}
