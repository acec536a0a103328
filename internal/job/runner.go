package job

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hlsget/hlsget/internal/domain"
	"github.com/hlsget/hlsget/internal/logger"
	"github.com/hlsget/hlsget/internal/pipeline"
)

// PageResolver locates playlist URLs on a media page. Implemented by the
// scrape package; jobs submitted with a direct playlist URL never touch it.
type PageResolver interface {
	Resolve(ctx context.Context, pageURL string) (urls []string, title string, err error)
}

// Uploader relays a finished artifact to a storage backend.
type Uploader interface {
	Upload(ctx context.Context, localPath string, cfg *domain.StorageConfig) (*domain.StorageResult, error)
}

// TokenIssuer registers a local artifact for token-based retrieval.
type TokenIssuer interface {
	Register(path string) string
}

// Historian records terminal job outcomes. May be nil-backed in tests.
type Historian interface {
	Record(ctx context.Context, view domain.JobView, inputs domain.JobInputs) error
}

// Runner executes one job per Launch call, detached from the request that
// created it, mutating job state only through the Store's contract.
type Runner struct {
	Store    *Store
	Pipeline *pipeline.Pipeline
	Pages    PageResolver
	Storage  Uploader
	Tokens   TokenIssuer
	History  Historian
	Log      *logger.Logger

	DefaultOutDir string
}

// Progress composition: the parsing phase owns 0-33, downloading scales the
// pipeline's segment progress across 33-99, and the terminal transition
// pins 100. Storing is a phase label only, no band of its own.
const (
	parseStartPercent = 5
	parseDonePercent  = 33
	storingPercent    = 99
)

// Launch starts the background run for a freshly created job and returns
// immediately. The job always reaches a terminal state: panics and
// unexpected errors are caught and recorded, never allowed to take the
// process down.
func (r *Runner) Launch(j *domain.Job) {
	ctx, cancel := context.WithCancel(context.Background())
	r.Store.BindCancel(j.ID, cancel)

	go func() {
		defer cancel()
		defer func() {
			if rec := recover(); rec != nil {
				r.Log.Error("Job %s panicked: %v", j.ID, rec)
				r.Store.Fail(j.ID, domain.CodeInternal, fmt.Sprintf("internal error: %v", rec))
				r.recordHistory(j.ID, j.Inputs)
			}
		}()

		r.run(ctx, j.ID, j.Inputs)
	}()
}

func (r *Runner) run(ctx context.Context, id string, inputs domain.JobInputs) {
	r.Store.MarkProcessing(id)

	playlistURL := inputs.SourceURL
	var title string

	if inputs.FromPage {
		r.Store.ReportProgress(id, parseStartPercent, domain.PhaseParsing, 0, 0)

		urls, pageTitle, err := r.Pages.Resolve(ctx, inputs.SourceURL)
		if err != nil {
			r.fail(id, inputs, err)
			return
		}
		// The reference behavior uses the first playlist found on the page.
		playlistURL = urls[0]
		title = pageTitle
		r.Log.Info("Job %s: resolved page to playlist %s", id, playlistURL)
	}

	r.Store.ReportProgress(id, parseDonePercent, domain.PhaseParsing, 0, 0)

	outDir := inputs.OutputDir
	if outDir == "" {
		outDir = r.DefaultOutDir
	}

	result, err := r.Pipeline.Run(ctx, playlistURL, outDir, func(p pipeline.Progress) {
		percent := parseDonePercent
		if p.Total > 0 {
			percent += p.Completed * (storingPercent - parseDonePercent) / p.Total
		}
		r.Store.ReportProgress(id, percent, p.Phase, p.Completed, p.Total)
	})
	if err != nil {
		r.fail(id, inputs, err)
		return
	}

	jobResult := &domain.JobResult{
		PlaylistURL: playlistURL,
		Title:       title,
		Download:    result,
	}

	r.Store.ReportProgress(id, storingPercent, domain.PhaseStoring, 0, 0)

	cfg := inputs.Storage
	if cfg == nil || cfg.Type == "" || cfg.Type == domain.StorageLocal {
		token := r.Tokens.Register(result.OutputFile)
		jobResult.Storage = &domain.StorageResult{
			Type:      domain.StorageLocal,
			LocalPath: result.OutputFile,
			Filename:  filepath.Base(result.OutputFile),
		}
		jobResult.DownloadURL = "/files/" + token
	} else {
		stored, err := r.Storage.Upload(ctx, result.OutputFile, cfg)
		if err != nil {
			r.fail(id, inputs, err)
			return
		}
		jobResult.Storage = stored
	}

	r.Store.Complete(id, jobResult)
	r.recordHistory(id, inputs)
	r.Log.Info("Job %s completed: %d/%d segments", id, result.Succeeded, result.Total)
}

func (r *Runner) fail(id string, inputs domain.JobInputs, err error) {
	r.Log.Error("Job %s failed: %v", id, err)
	r.Store.Fail(id, domain.CodeOf(err), err.Error())
	r.recordHistory(id, inputs)
}

// recordHistory is best-effort: the audit store must never affect the job
// outcome. Uses its own context because the job's may already be cancelled.
func (r *Runner) recordHistory(id string, inputs domain.JobInputs) {
	if r.History == nil {
		return
	}

	view, ok := r.Store.Get(id)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.History.Record(ctx, view, inputs); err != nil {
		r.Log.Warn("Failed to record job %s in history: %v", id, err)
	}
}
