// Package pipeline orchestrates one playlist-to-artifact download run:
// resolve the playlist, fetch segments on a bounded worker pool, merge the
// results in strict index order, clean up the per-segment artifacts.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hlsget/hlsget/internal/domain"
	"github.com/hlsget/hlsget/internal/fetch"
	"github.com/hlsget/hlsget/internal/logger"
	"github.com/hlsget/hlsget/internal/playlist"
)

// Progress carries the running segment counts handed to the caller after
// every finished segment, success or failure.
type Progress struct {
	Completed int
	Total     int
	Phase     string
}

type ProgressFunc func(Progress)

type Pipeline struct {
	fetcher    *fetch.Fetcher
	log        *logger.Logger
	workers    int
	outputName string
}

func New(fetcher *fetch.Fetcher, log *logger.Logger, workers int, outputName string) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	if outputName == "" {
		outputName = "merged_video.ts"
	}
	return &Pipeline{fetcher: fetcher, log: log, workers: workers, outputName: outputName}
}

type segmentResult struct {
	seg  playlist.Segment
	path string
	size int64
	err  error
}

// Run downloads the playlist at playlistURL into outDir and returns the
// merged artifact. A single segment failure never aborts the run; zero
// successes do. The returned DownloadResult is non-nil whenever segment
// work happened, even alongside an error.
func (p *Pipeline) Run(ctx context.Context, playlistURL, outDir string, onProgress ProgressFunc) (*domain.DownloadResult, error) {
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	base, err := url.Parse(playlistURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, domain.Errf(domain.CodeInvalidInput, "invalid m3u8 URL: %s", playlistURL)
	}

	body, err := p.fetcher.Fetch(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	segments, err := playlist.Resolve(string(body), base)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, domain.WrapErr(domain.CodeIO, fmt.Errorf("failed to create output dir: %w", err))
	}

	p.log.Info("Downloading %d segments from %s", len(segments), playlistURL)
	onProgress(Progress{Completed: 0, Total: len(segments), Phase: domain.PhaseDownloading})

	fetched, failures := p.fetchAll(ctx, segments, outDir, onProgress)

	result := &domain.DownloadResult{
		Succeeded: len(fetched),
		Failed:    len(failures),
		Total:     len(segments),
	}
	if len(failures) > 0 {
		result.Failures = failures
	}

	if ctx.Err() != nil {
		p.removeArtifacts(fetched)
		return result, ctx.Err()
	}

	if len(fetched) == 0 {
		return result, domain.Errf(domain.CodeAllDownloadsFailed, "all %d segment downloads failed", len(segments))
	}

	// Merge strictly by index, then drop every temp artifact no matter how
	// the merge went. Cleanup failures are logged, never fatal.
	ordered := make([]string, 0, len(fetched))
	indexes := make([]int, 0, len(fetched))
	for idx := range fetched {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		ordered = append(ordered, fetched[idx])
	}

	outPath := filepath.Join(outDir, p.outputName)
	mergeErr := Merge(ordered, outPath)
	p.removeArtifacts(fetched)

	if mergeErr != nil {
		return result, mergeErr
	}

	result.OutputFile = outPath
	p.log.Info("Merged %d/%d segments into %s", len(fetched), len(segments), outPath)
	return result, nil
}

// fetchAll runs the bounded worker pool. Fetch completion order is
// unspecified; ordering is restored by the caller from the index keys.
func (p *Pipeline) fetchAll(ctx context.Context, segments []playlist.Segment, outDir string, onProgress ProgressFunc) (map[int]string, []domain.SegmentFailure) {
	workers := p.workers
	if workers > len(segments) {
		workers = len(segments)
	}

	jobs := make(chan playlist.Segment, len(segments))
	results := make(chan segmentResult, len(segments))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, jobs, results, outDir)
		}()
	}

	for _, seg := range segments {
		jobs <- seg
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	fetched := make(map[int]string)
	var failures []domain.SegmentFailure
	completed := 0

	for res := range results {
		completed++
		if res.err != nil {
			p.log.Warn("Segment %d failed: %v", res.seg.Index, res.err)
			failures = append(failures, domain.SegmentFailure{
				Index:  res.seg.Index,
				URL:    res.seg.URL,
				Reason: res.err.Error(),
			})
		} else {
			p.log.Debug("Segment %d fetched (%d bytes)", res.seg.Index, res.size)
			fetched[res.seg.Index] = res.path
		}
		onProgress(Progress{Completed: completed, Total: len(segments), Phase: domain.PhaseDownloading})
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })
	return fetched, failures
}

func (p *Pipeline) worker(ctx context.Context, jobs <-chan playlist.Segment, results chan<- segmentResult, outDir string) {
	for seg := range jobs {
		if ctx.Err() != nil {
			return
		}

		data, err := p.fetcher.Fetch(ctx, seg.URL)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			results <- segmentResult{seg: seg, err: err}
			continue
		}

		// Zero-padded fixed width so lexical and numeric order coincide.
		path := filepath.Join(outDir, fmt.Sprintf("segment_%06d.ts", seg.Index))
		if err := os.WriteFile(path, data, 0644); err != nil {
			results <- segmentResult{seg: seg, err: err}
			continue
		}

		results <- segmentResult{seg: seg, path: path, size: int64(len(data))}
	}
}

func (p *Pipeline) removeArtifacts(fetched map[int]string) {
	for _, path := range fetched {
		if err := os.Remove(path); err != nil {
			p.log.Warn("Failed to remove temp segment %s: %v", path, err)
		}
	}
}
