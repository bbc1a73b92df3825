// One-shot FTP transfer of a local file to the archive. A fresh connection
// per call keeps the component stateless; callers decide what a failure
// means (the upload resolver falls back to the blob URL).
package relay

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/jlaffaye/ftp"

	"maqayees/internal/config"
)

// Relay transfers files to the FTP archive configured at startup.
type Relay struct {
	cfg config.Archive
}

func New(cfg config.Archive) *Relay {
	return &Relay{cfg: cfg}
}

// Store connects, ensures the destination directory exists, uploads the
// local file to remotePath and closes the connection. Returns the
// normalized remote path. No retry: any connect, mkdir or transfer error
// propagates.
func (r *Relay) Store(ctx context.Context, localPath, remotePath string) (string, error) {
	remotePath = NormalizePath(remotePath)

	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(r.cfg.Timeout))
	if err != nil {
		return "", fmt.Errorf("archive dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Login(r.cfg.User, r.cfg.Password); err != nil {
		return "", fmt.Errorf("archive login: %w", err)
	}

	if err := ensureDir(conn, path.Dir(remotePath)); err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open local file: %w", err)
	}
	defer f.Close()

	if err := conn.Stor(remotePath, f); err != nil {
		return "", fmt.Errorf("archive store %s: %w", remotePath, err)
	}
	return remotePath, nil
}

// ensureDir creates every segment of dir, ignoring "already exists" replies.
// A genuinely unusable directory surfaces on the subsequent STOR.
func ensureDir(conn *ftp.ServerConn, dir string) error {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return nil
	}
	current := ""
	for _, seg := range strings.Split(dir, "/") {
		current += "/" + seg
		if err := conn.ChangeDir(current); err == nil {
			continue
		}
		if err := conn.MakeDir(current); err != nil {
			// Racing creators are fine; a broken tree fails on ChangeDir.
			if cdErr := conn.ChangeDir(current); cdErr != nil {
				return fmt.Errorf("archive mkdir %s: %w", current, err)
			}
		}
	}
	// Reset so Stor gets the absolute path from the root.
	return conn.ChangeDir("/")
}

// NormalizePath guarantees a leading slash on the destination path.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
