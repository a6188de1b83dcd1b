// Package debounce provides the coalescing scheduler used by
// search-as-you-type and the filter controls: across any burst of Schedule
// calls closer together than the delay, exactly one invocation fires, with
// the arguments of the last call.
package debounce

import (
	"sync"
	"time"
)

// Scheduler holds at most one pending invocation. A new Schedule call always
// supersedes the pending one, never queues alongside it; this is not a task
// queue.
type Scheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// New creates an idle scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Schedule cancels any not-yet-fired invocation and arranges for fn to run
// after delay of quiescence. The generation counter closes the race where a
// superseded timer has already fired but not yet run: such an invocation
// observes a stale generation and discards itself.
func (s *Scheduler) Schedule(fn func(), delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Stop cancels any pending invocation. Safe to call when idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Pending reports whether an invocation is currently scheduled.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
