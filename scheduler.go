package overture

import "time"

// deferred is a one-shot callback due at a point on the frame clock.
type deferred struct {
	name string
	at   time.Duration
	fn   func()
}

// scheduler runs one-shot callbacks off the host frame clock. No OS timer is
// involved, so nothing can fire once the frame loop has stopped.
type scheduler struct {
	now     time.Duration
	pending []deferred
}

func (s *scheduler) after(name string, delay time.Duration, fn func()) {
	s.pending = append(s.pending, deferred{name: name, at: s.now + delay, fn: fn})
}

// advance moves the clock and runs whatever became due, in scheduling order.
func (s *scheduler) advance(dt time.Duration) {
	if dt > 0 {
		s.now += dt
	}
	var due []deferred
	kept := s.pending[:0]
	for _, d := range s.pending {
		if d.at <= s.now {
			due = append(due, d)
		} else {
			kept = append(kept, d)
		}
	}
	s.pending = kept
	for _, d := range due {
		d.fn()
	}
}

// cancelAll drops every pending callback and reports how many there were.
func (s *scheduler) cancelAll() int {
	n := len(s.pending)
	s.pending = nil
	return n
}

func (s *scheduler) pendingCount() int {
	return len(s.pending)
}
