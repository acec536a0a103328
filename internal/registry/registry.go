// Package registry maps opaque single-use download tokens to local
// artifact paths. A token resolves exactly once and never re-resolves to a
// different file; a miss is a terminal not-found, not something to retry.
package registry

import (
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

type entry struct {
	path      string
	createdAt time.Time
}

type Registry struct {
	mu      sync.Mutex
	entries map[string]entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register issues a fresh token for path. Tokens are never reused.
func (r *Registry) Register(path string) string {
	token := ksuid.New().String()

	r.mu.Lock()
	r.entries[token] = entry{path: path, createdAt: time.Now()}
	r.mu.Unlock()

	return token
}

// Claim redeems a token, removing it in the same step so it cannot be
// used twice.
func (r *Registry) Claim(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[token]
	if !ok {
		return "", false
	}
	delete(r.entries, token)
	return e.path, true
}

// SweepExpired drops unclaimed tokens older than ttl.
func (r *Registry) SweepExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, e := range r.entries {
		if e.createdAt.Before(cutoff) {
			delete(r.entries, token)
			removed++
		}
	}
	return removed
}
