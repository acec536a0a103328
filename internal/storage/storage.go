// Package storage relays a finished artifact to a configured backend. The
// gateway dispatches on the config's type discriminator only; each backend
// validates its own required fields and fails with a descriptive reason.
package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hlsget/hlsget/internal/domain"
	"github.com/hlsget/hlsget/internal/logger"
)

type Gateway struct {
	log *logger.Logger
}

func NewGateway(log *logger.Logger) *Gateway {
	return &Gateway{log: log}
}

// Upload relays localPath per cfg and returns a location descriptor. A nil
// or untyped config means local storage.
func (g *Gateway) Upload(ctx context.Context, localPath string, cfg *domain.StorageConfig) (*domain.StorageResult, error) {
	storageType := domain.StorageLocal
	if cfg != nil && cfg.Type != "" {
		storageType = cfg.Type
	}
	if cfg == nil {
		cfg = &domain.StorageConfig{}
	}

	if _, err := os.Stat(localPath); err != nil {
		return nil, domain.Errf(domain.CodeStorage, "local file not found: %s", localPath)
	}

	g.log.Info("Storing %s via %s backend", localPath, storageType)

	switch storageType {
	case domain.StorageLocal:
		return &domain.StorageResult{
			Type:      domain.StorageLocal,
			LocalPath: localPath,
			Filename:  filepath.Base(localPath),
		}, nil
	case domain.StorageS3:
		return g.uploadS3(ctx, localPath, cfg)
	case domain.StorageWebDAV:
		return g.uploadWebDAV(ctx, localPath, cfg)
	case domain.StorageFTP:
		return g.uploadFTP(ctx, localPath, cfg)
	default:
		return nil, domain.Errf(domain.CodeStorage, "unsupported storage type: %s", storageType)
	}
}

// remoteTarget derives the backend target path: an explicit full target
// wins, then the configured directory plus the artifact's filename, then
// the filename alone (prefixed when the backend wants rooted paths).
func remoteTarget(explicit, dir, filename, fallbackPrefix string) string {
	if explicit != "" {
		return explicit
	}

	normalized := strings.TrimRight(strings.ReplaceAll(dir, "\\", "/"), "/")
	if normalized != "" {
		return normalized + "/" + filename
	}
	return fallbackPrefix + filename
}

// remoteDir is the directory part of a remote target, empty when the
// target sits at the root.
func remoteDir(target string) string {
	dir := path.Dir(target)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
