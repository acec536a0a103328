// Package job holds the in-memory job store and the state machine that
// governs it: Pending -> Processing -> {Completed, Failed}. The store is
// the sole mutator of job records; everything else holds a job ID and goes
// through these methods.
package job

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hlsget/hlsget/internal/domain"
	"github.com/hlsget/hlsget/internal/logger"
	"github.com/segmentio/ksuid"
)

type Store struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	log  *logger.Logger
}

func NewStore(log *logger.Logger) *Store {
	return &Store{jobs: make(map[string]*domain.Job), log: log}
}

// Create allocates a fresh job in Pending and returns it immediately.
// KSUIDs combine a timestamp with random entropy, so IDs stay unique even
// for jobs created in the same instant.
func (s *Store) Create(inputs domain.JobInputs) *domain.Job {
	j := &domain.Job{
		ID:        ksuid.New().String(),
		Status:    domain.StatusPending,
		Phase:     "pending",
		Inputs:    inputs,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()

	return j
}

// BindCancel attaches the background run's cancel function to a live job.
func (s *Store) BindCancel(id string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[id]; ok && !j.Status.Terminal() {
		j.CancelFunc = cancel
	}
}

// MarkProcessing moves a Pending job to Processing. Calling it on a job
// already Processing is a no-op; terminal jobs are never touched.
func (s *Store) MarkProcessing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.Status.Terminal() {
		return
	}
	j.Status = domain.StatusProcessing
}

// ReportProgress updates the mutable progress fields of a Processing job.
// Reports racing a finished job are dropped (logged, not fatal): a terminal
// record must never be resurrected. Progress is clamped so the observable
// percentage is monotonically non-decreasing and never above 100.
func (s *Store) ReportProgress(id string, percent int, phase string, done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		s.log.Debug("Progress report for unknown job %s dropped", id)
		return
	}
	if j.Status.Terminal() {
		s.log.Debug("Progress report for terminal job %s dropped", id)
		return
	}

	if percent > 100 {
		percent = 100
	}
	if percent > j.Progress {
		j.Progress = percent
	}
	if phase != "" {
		j.Phase = phase
	}
	if total > 0 {
		j.SegmentsDone = done
		j.SegmentsTotal = total
	}
}

// Complete is the one-shot Completed transition. A second terminal call on
// the same job is a no-op.
func (s *Store) Complete(id string, result *domain.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.Status.Terminal() {
		return
	}

	now := time.Now()
	j.Status = domain.StatusCompleted
	j.Phase = domain.PhaseCompleted
	j.Progress = 100
	j.Result = result
	j.CompletedAt = &now
	j.CancelFunc = nil
}

// Fail is the one-shot Failed transition.
func (s *Store) Fail(id, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.Status.Terminal() {
		return
	}

	now := time.Now()
	j.Status = domain.StatusFailed
	j.Phase = domain.PhaseFailed
	j.Error = &domain.JobError{Code: code, Message: message}
	j.CompletedAt = &now
	j.CancelFunc = nil
}

// Get returns a read-only snapshot of one job.
func (s *Store) Get(id string) (domain.JobView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return domain.JobView{}, false
	}
	return snapshot(j), true
}

// All returns snapshots of every live job, oldest first (KSUIDs sort
// chronologically).
func (s *Store) All() []domain.JobView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]domain.JobView, 0, len(s.jobs))
	for _, j := range s.jobs {
		views = append(views, snapshot(j))
	}
	sort.Slice(views, func(i, k int) bool { return views[i].ID < views[k].ID })
	return views
}

// Cancel fires the job's cancellation signal. Returns false for unknown or
// already-terminal jobs.
func (s *Store) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.Status.Terminal() {
		return false
	}
	if j.CancelFunc != nil {
		j.CancelFunc()
	}
	return true
}

// SweepTerminal drops terminal jobs whose completion is older than ttl and
// reports how many were removed. Live jobs are never evicted.
func (s *Store) SweepTerminal(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, j := range s.jobs {
		if j.Status.Terminal() && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func snapshot(j *domain.Job) domain.JobView {
	return domain.JobView{
		ID:            j.ID,
		Status:        j.Status,
		Phase:         j.Phase,
		Progress:      j.Progress,
		SegmentsDone:  j.SegmentsDone,
		SegmentsTotal: j.SegmentsTotal,
		CreatedAt:     j.CreatedAt,
		CompletedAt:   j.CompletedAt,
		Result:        j.Result,
		Error:         j.Error,
	}
}
