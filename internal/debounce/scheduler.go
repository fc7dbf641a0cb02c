// Package debounce provides a keyed debounce scheduler: scheduling under a
// key cancels any pending action for that key and arms a fresh timer, so
// only the last-scheduled action per key runs.
package debounce

import (
	"sync"
	"time"
)

// Scheduler runs at most one pending action per key. Each Schedule call
// bumps the key's sequence number; the action receives the sequence it was
// armed with so callers can detect that a slow completion has been
// superseded (Seq returns the current number for comparison).
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	seqs    map[string]uint64
	stopped bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		seqs:   make(map[string]uint64),
	}
}

// Schedule arms fn to run after delay, cancelling any action previously
// scheduled under the same key. fn runs on a timer goroutine.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func(seq uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	s.seqs[key]++
	seq := s.seqs[key]

	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A later Schedule or Cancel supersedes this firing.
		if s.stopped || s.seqs[key] != seq {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		fn(seq)
	})
}

// Cancel drops any pending action for key. The key's sequence number is
// bumped so an already-fired action observes itself as stale.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	s.seqs[key]++
}

// Seq returns the current sequence number for key. An action whose armed
// sequence no longer matches has been superseded and must discard its
// result.
func (s *Scheduler) Seq(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[key]
}

// Stop cancels every pending action and rejects further scheduling. Used
// when the owning view is discarded.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.stopped = true
}
