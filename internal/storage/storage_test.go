package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlsget/hlsget/internal/domain"
	"github.com/hlsget/hlsget/internal/logger"
)

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merged_video.ts")
	require.NoError(t, os.WriteFile(path, []byte("video-bytes"), 0644))
	return path
}

func TestUploadLocal(t *testing.T) {
	g := NewGateway(logger.Discard())
	artifact := writeArtifact(t)

	for name, cfg := range map[string]*domain.StorageConfig{
		"nil config":    nil,
		"empty type":    {},
		"explicit type": {Type: domain.StorageLocal},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := g.Upload(context.Background(), artifact, cfg)
			require.NoError(t, err)
			assert.Equal(t, domain.StorageLocal, result.Type)
			assert.Equal(t, artifact, result.LocalPath)
			assert.Equal(t, "merged_video.ts", result.Filename)
		})
	}
}

func TestUploadMissingLocalFile(t *testing.T) {
	g := NewGateway(logger.Discard())

	_, err := g.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.ts"), nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeStorage, domain.CodeOf(err))
}

func TestUploadUnsupportedType(t *testing.T) {
	g := NewGateway(logger.Discard())

	_, err := g.Upload(context.Background(), writeArtifact(t), &domain.StorageConfig{Type: "tape"})
	require.Error(t, err)
	assert.Equal(t, domain.CodeStorage, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestUploadBackendConfigValidation(t *testing.T) {
	g := NewGateway(logger.Discard())
	artifact := writeArtifact(t)

	cases := map[string]*domain.StorageConfig{
		"s3 without bucket":   {Type: domain.StorageS3, Key: "videos/merged_video.ts"},
		"webdav without url":  {Type: domain.StorageWebDAV, RemotePath: "/videos/merged_video.ts"},
		"ftp without host":    {Type: domain.StorageFTP, RemotePath: "videos/merged_video.ts"},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := g.Upload(context.Background(), artifact, cfg)
			require.Error(t, err)
			assert.Equal(t, domain.CodeStorage, domain.CodeOf(err))
		})
	}
}

func TestRemoteTarget(t *testing.T) {
	t.Run("explicit target wins", func(t *testing.T) {
		assert.Equal(t, "videos/out.ts", remoteTarget("videos/out.ts", "ignored", "merged_video.ts", ""))
	})

	t.Run("directory plus filename", func(t *testing.T) {
		assert.Equal(t, "videos/2026/merged_video.ts", remoteTarget("", "videos/2026/", "merged_video.ts", ""))
	})

	t.Run("backslashes are normalized", func(t *testing.T) {
		assert.Equal(t, "videos/2026/merged_video.ts", remoteTarget("", "videos\\2026", "merged_video.ts", ""))
	})

	t.Run("filename alone uses the fallback prefix", func(t *testing.T) {
		assert.Equal(t, "/merged_video.ts", remoteTarget("", "", "merged_video.ts", "/"))
		assert.Equal(t, "merged_video.ts", remoteTarget("", "", "merged_video.ts", ""))
	})
}

func TestRemoteDir(t *testing.T) {
	assert.Equal(t, "videos/2026", remoteDir("videos/2026/merged_video.ts"))
	assert.Equal(t, "", remoteDir("merged_video.ts"))
	assert.Equal(t, "", remoteDir("/merged_video.ts"))
}
