package domain

import (
	"context"
	"time"
)

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further state mutation may occur.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Phase labels shown to polling clients. Free-form by contract, but the
// pipeline only ever emits these.
const (
	PhaseParsing     = "parsing"
	PhaseDownloading = "downloading"
	PhaseStoring     = "storing"
	PhaseCompleted   = "completed"
	PhaseFailed      = "failed"
)

// JobInputs captures the original request parameters. Immutable after
// job creation.
type JobInputs struct {
	SourceURL string         `json:"sourceUrl"`
	FromPage  bool           `json:"fromPage"`
	OutputDir string         `json:"outputDir"`
	Storage   *StorageConfig `json:"storage,omitempty"`
}

// JobError is the terminal failure payload of a job.
type JobError struct {
	Code    string `json:"error"`
	Message string `json:"errmsg,omitempty"`
}

// JobResult is set once on a completed job.
type JobResult struct {
	PlaylistURL string          `json:"m3u8Url,omitempty"`
	Title       string          `json:"title,omitempty"`
	Download    *DownloadResult `json:"download"`
	Storage     *StorageResult  `json:"storage,omitempty"`

	// DownloadURL is the token-based retrieval path for locally stored
	// artifacts.
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// Job is the aggregate root of one asynchronous download. The JobStore is
// the sole mutator; everything else holds the ID and goes through the
// store's contract.
type Job struct {
	ID            string    `json:"id"`
	Status        JobStatus `json:"status"`
	Phase         string    `json:"phase"`
	Progress      int       `json:"progress"`
	SegmentsDone  int       `json:"segmentsDone,omitempty"`
	SegmentsTotal int       `json:"segmentsTotal,omitempty"`
	Inputs        JobInputs `json:"inputs"`
	CreatedAt     time.Time `json:"createdAt"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Result      *JobResult `json:"result,omitempty"`
	Error       *JobError  `json:"error,omitempty"`

	CancelFunc context.CancelFunc `json:"-"`
}

// JobView is the read-only projection returned by status queries.
type JobView struct {
	ID            string     `json:"id"`
	Status        JobStatus  `json:"status"`
	Phase         string     `json:"phase"`
	Progress      int        `json:"progress"`
	SegmentsDone  int        `json:"segmentsDone,omitempty"`
	SegmentsTotal int        `json:"segmentsTotal,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Result        *JobResult `json:"result,omitempty"`
	Error         *JobError  `json:"error,omitempty"`
}
