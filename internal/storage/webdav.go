package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/studio-b12/gowebdav"

	"github.com/hlsget/hlsget/internal/domain"
)

func (g *Gateway) uploadWebDAV(ctx context.Context, localPath string, cfg *domain.StorageConfig) (*domain.StorageResult, error) {
	remotePath := remoteTarget(cfg.RemotePath, cfg.Path, filepath.Base(localPath), "/")

	if cfg.URL == "" || remotePath == "" {
		return nil, domain.Errf(domain.CodeStorage, "invalid WebDAV config: url and (remotePath or path) are required")
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)

	if err := client.Connect(); err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, fmt.Errorf("WebDAV connect failed: %w", err))
	}

	if dir := remoteDir(remotePath); dir != "" {
		// Parent creation is best-effort; the write itself reports the
		// authoritative failure.
		_ = client.MkdirAll(dir, 0755)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, err)
	}
	defer f.Close()

	if err := client.WriteStream(remotePath, f, 0644); err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, fmt.Errorf("WebDAV upload failed: %w", err))
	}

	g.log.Info("Uploaded to WebDAV %s%s", cfg.URL, remotePath)

	return &domain.StorageResult{
		Type:       domain.StorageWebDAV,
		URL:        cfg.URL,
		RemotePath: remotePath,
		Location:   cfg.URL + remotePath,
	}, nil
}
