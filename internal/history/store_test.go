package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlsget/hlsget/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open("sqlite", filepath.Join(t.TempDir(), "hlsget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func completedView(id string, completedAt time.Time) domain.JobView {
	return domain.JobView{
		ID:          id,
		Status:      domain.StatusCompleted,
		Phase:       domain.PhaseCompleted,
		Progress:    100,
		CreatedAt:   completedAt.Add(-time.Minute),
		CompletedAt: &completedAt,
		Result: &domain.JobResult{
			PlaylistURL: "https://cdn.example.com/index.m3u8",
			Download: &domain.DownloadResult{
				Succeeded:  3,
				Total:      3,
				OutputFile: "/data/merged_video.ts",
			},
			Storage: &domain.StorageResult{
				Type:     domain.StorageS3,
				Location: "s3://bucket/merged_video.ts",
			},
		},
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown history driver")
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	view := completedView("job-1", time.Now())
	require.NoError(t, s.Record(ctx, view, domain.JobInputs{
		SourceURL: "https://cdn.example.com/index.m3u8",
	}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "job-1", e.ID)
	assert.Equal(t, "https://cdn.example.com/index.m3u8", e.SourceURL)
	assert.Equal(t, string(domain.StatusCompleted), e.Status)
	assert.Equal(t, 3, e.Downloaded)
	assert.Equal(t, 3, e.Total)
	assert.Equal(t, "/data/merged_video.ts", e.OutputFile)
	assert.Equal(t, domain.StorageS3, e.StorageType)
	assert.Equal(t, "s3://bucket/merged_video.ts", e.StorageLocation)
	assert.Empty(t, e.ErrorCode)
	require.NotNil(t, e.CompletedAt)
}

func TestRecordFailedJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	view := domain.JobView{
		ID:          "job-failed",
		Status:      domain.StatusFailed,
		Phase:       domain.PhaseFailed,
		CreatedAt:   now.Add(-time.Minute),
		CompletedAt: &now,
		Error:       &domain.JobError{Code: domain.CodeTransport, Message: "HTTP 502"},
	}
	require.NoError(t, s.Record(ctx, view, domain.JobInputs{
		SourceURL: "https://pages.example.com/watch/7",
		FromPage:  true,
	}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.True(t, e.FromPage)
	assert.Equal(t, string(domain.StatusFailed), e.Status)
	assert.Equal(t, domain.CodeTransport, e.ErrorCode)
	assert.Equal(t, "HTTP 502", e.ErrorMessage)
	assert.Empty(t, e.OutputFile)
	assert.Empty(t, e.StorageType)
}

func TestRecordSameJobTwiceIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	view := completedView("job-dup", time.Now())
	require.NoError(t, s.Record(ctx, view, domain.JobInputs{SourceURL: "https://cdn.example.com/a.m3u8"}))
	require.NoError(t, s.Record(ctx, view, domain.JobInputs{SourceURL: "https://cdn.example.com/a.m3u8"}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		view := completedView(string(rune('a'+i))+"-job", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Record(ctx, view, domain.JobInputs{SourceURL: "https://cdn.example.com/a.m3u8"}))
	}

	entries, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "e-job", entries[0].ID)
	assert.Equal(t, "d-job", entries[1].ID)
	assert.Equal(t, "c-job", entries[2].ID)
}

func TestRebind(t *testing.T) {
	sqlite := &Store{driver: "sqlite"}
	assert.Equal(t, "VALUES (?, ?)", sqlite.rebind("VALUES (?, ?)"))

	pg := &Store{driver: "postgres"}
	assert.Equal(t, "VALUES ($1, $2)", pg.rebind("VALUES (?, ?)"))
}
