package job

import (
	"context"
	"time"

	"github.com/hlsget/hlsget/internal/logger"
)

// TokenSweeper expires unclaimed download tokens. Implemented by the
// registry package.
type TokenSweeper interface {
	SweepExpired(ttl time.Duration) int
}

// Sweeper periodically evicts terminal jobs and stale download tokens.
// Indefinite retention is a resource leak; this is the documented policy.
type Sweeper struct {
	Store    *Store
	Tokens   TokenSweeper
	JobTTL   time.Duration
	TokenTTL time.Duration
	Interval time.Duration
	Log      *logger.Logger
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs := s.Store.SweepTerminal(s.JobTTL)
			tokens := 0
			if s.Tokens != nil {
				tokens = s.Tokens.SweepExpired(s.TokenTTL)
			}
			if jobs > 0 || tokens > 0 {
				s.Log.Debug("Retention sweep removed %d jobs, %d tokens", jobs, tokens)
			}
		}
	}
}
