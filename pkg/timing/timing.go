// Package timing tracks how long named stages of a pipeline take. Timers
// accumulate across start/stop cycles so repeated stages report their
// combined duration.
package timing

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type timer struct {
	running   bool
	startedAt time.Time
	total     time.Duration
}

// SetOption customises a Set.
type SetOption func(*Set)

// WithNow overrides the clock. Tests use it to make durations deterministic.
func WithNow(now func() time.Time) SetOption {
	return func(s *Set) {
		if now != nil {
			s.now = now
		}
	}
}

// Set is a collection of named timers. Safe for concurrent use.
type Set struct {
	mu     sync.Mutex
	timers map[string]*timer
	now    func() time.Time
}

// NewSet constructs an empty timer set.
func NewSet(options ...SetOption) *Set {
	s := &Set{
		timers: make(map[string]*timer),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Start begins (or resumes) the named timer. Starting a timer that is already
// running is a no-op.
func (s *Set) Start(name string) {
	moment := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.timers[name]
	if !ok {
		s.timers[name] = &timer{running: true, startedAt: moment}
		return
	}
	if !entry.running {
		entry.running = true
		entry.startedAt = moment
	}
}

// Stop halts the named timer and folds the elapsed time into its total.
// Stopping a timer that is not running is a no-op; stopping a timer that was
// never started is an error.
func (s *Set) Stop(name string) error {
	moment := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.timers[name]
	if !ok {
		return fmt.Errorf("timing: timer %q not found", name)
	}
	if entry.running {
		entry.running = false
		entry.total += moment.Sub(entry.startedAt)
	}
	return nil
}

// Track starts the named timer and returns a closure that stops it, for use
// with defer around a pipeline stage.
func (s *Set) Track(name string) func() {
	s.Start(name)
	return func() {
		// The timer necessarily exists; the stop cannot fail.
		_ = s.Stop(name)
	}
}

// Total returns the accumulated duration for a timer, zero if unknown. A
// running timer reports only its completed cycles.
func (s *Set) Total(name string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.timers[name]; ok {
		return entry.total
	}
	return 0
}

// Entry is one row of a timing report.
type Entry struct {
	Name    string
	Total   time.Duration
	Percent float64
}

// Entries returns all timers in descending order of accumulated time, with
// each timer's share of the combined total.
func (s *Set) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.timers))
	var grandTotal time.Duration
	for name, entry := range s.timers {
		entries = append(entries, Entry{Name: name, Total: entry.total})
		grandTotal += entry.total
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total == entries[j].Total {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Total > entries[j].Total
	})

	if grandTotal > 0 {
		for i := range entries {
			entries[i].Percent = float64(entries[i].Total) / float64(grandTotal) * 100.0
		}
	}
	return entries
}
