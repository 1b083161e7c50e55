package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
)

// Downloader copies one remote file to a local path. Satisfied by Client;
// faked in tests.
type Downloader interface {
	Download(ctx context.Context, remotePath, localPath string) error
}

// Client downloads forecast files from the credentialed GloFAS FTP server.
// Each Download dials a fresh connection; the batch job fetches a handful of
// files per run, so connection reuse buys nothing.
type Client struct {
	host     string
	user     string
	password string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClient builds an FTP client. host is "host:port".
func NewClient(host, user, password string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		host:     host,
		user:     user,
		password: password,
		timeout:  timeout,
		logger:   logger,
	}
}

// Download retrieves remotePath into localPath, creating parent directories
// as needed. Writes go to a temp file renamed into place on success so a
// half-written artifact is never picked up by extraction.
func (c *Client) Download(ctx context.Context, remotePath, localPath string) error {
	conn, err := ftp.Dial(c.host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.timeout))
	if err != nil {
		return fmt.Errorf("ftp dial %s: %w", c.host, err)
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			c.logger.Warn("ftp quit failed", "error", err)
		}
	}()

	if err := conn.Login(c.user, c.password); err != nil {
		return fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(remotePath)
	if err != nil {
		return fmt.Errorf("ftp retr %s: %w", remotePath, err)
	}
	defer resp.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}

	tmp := localPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	n, err := io.Copy(out, resp)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("download %s: %w", remotePath, err)
	}
	if err := os.Rename(tmp, localPath); err != nil {
		return fmt.Errorf("finalize %s: %w", localPath, err)
	}

	c.logger.Info("downloaded forecast file", "remote", remotePath, "local", localPath, "bytes", n)
	return nil
}
