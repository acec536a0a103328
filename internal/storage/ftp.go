package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/hlsget/hlsget/internal/domain"
)

func (g *Gateway) uploadFTP(ctx context.Context, localPath string, cfg *domain.StorageConfig) (*domain.StorageResult, error) {
	remotePath := remoteTarget(cfg.RemotePath, cfg.Path, filepath.Base(localPath), "")

	if cfg.Host == "" || remotePath == "" {
		return nil, domain.Errf(domain.CodeStorage, "invalid FTP config: host and (remotePath or path) are required")
	}

	port := cfg.Port
	if port == 0 {
		port = 21
	}

	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(30 * time.Second),
	}
	if cfg.Secure {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{ServerName: cfg.Host}))
	}

	conn, err := ftp.Dial(fmt.Sprintf("%s:%d", cfg.Host, port), opts...)
	if err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, fmt.Errorf("FTP connect failed: %w", err))
	}
	defer conn.Quit()

	user := cfg.User
	password := cfg.Password
	if user == "" {
		user = "anonymous"
		password = "anonymous"
	}
	if err := conn.Login(user, password); err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, fmt.Errorf("FTP login failed: %w", err))
	}

	if dir := remoteDir(remotePath); dir != "" {
		ensureFTPDir(conn, dir)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, err)
	}
	defer f.Close()

	if err := conn.Stor(remotePath, f); err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, fmt.Errorf("FTP upload failed: %w", err))
	}

	g.log.Info("Uploaded to FTP %s:%d %s", cfg.Host, port, remotePath)

	return &domain.StorageResult{
		Type:       domain.StorageFTP,
		Host:       cfg.Host,
		Port:       port,
		RemotePath: remotePath,
		Location:   fmt.Sprintf("ftp://%s:%d/%s", cfg.Host, port, strings.TrimPrefix(remotePath, "/")),
	}, nil
}

// ensureFTPDir creates each path component in turn. Existing directories
// make MakeDir fail, which is fine; Stor reports the real problem if the
// path still does not exist.
func ensureFTPDir(conn *ftp.ServerConn, dir string) {
	parts := strings.Split(strings.Trim(dir, "/"), "/")
	current := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if current == "" {
			current = part
		} else {
			current = current + "/" + part
		}
		_ = conn.MakeDir(current)
	}
}
