package threats

import (
	"sync"
	"time"
)

type trackedEvent struct {
	Timestamp time.Time
	Kind      string
}

// TrackingWindow holds the ordered event list and cumulative counters for
// one detector key (IP, user+tenant, ...).
type TrackingWindow struct {
	Events    []trackedEvent
	Counters  map[string]int
	FirstSeen time.Time
	LastSeen  time.Time
}

// TrackingStore is the shared sliding-window state behind the monitors.
// Every read-modify-write happens under the mutex; events older than 24h are
// pruned on record and by the hourly cleanup.
type TrackingStore struct {
	mu      sync.Mutex
	windows map[string]*TrackingWindow
}

const maxEventAge = 24 * time.Hour

func NewTrackingStore() *TrackingStore {
	return &TrackingStore{
		windows: make(map[string]*TrackingWindow),
	}
}

// Record appends an event, bumps the cumulative counter for kind, and
// returns the new cumulative count.
func (s *TrackingStore) Record(key, kind string, timestamp time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, exists := s.windows[key]
	if !exists {
		window = &TrackingWindow{
			Counters:  make(map[string]int),
			FirstSeen: timestamp,
		}
		s.windows[key] = window
	}

	window.Events = append(window.Events, trackedEvent{Timestamp: timestamp, Kind: kind})
	window.Counters[kind]++
	window.LastSeen = timestamp

	s.pruneWindowLocked(window, timestamp.Add(-maxEventAge))

	return window.Counters[kind]
}

// CountSince counts events of the given kind newer than the cutoff.
func (s *TrackingStore) CountSince(key, kind string, since time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, exists := s.windows[key]
	if !exists {
		return 0
	}

	count := 0
	for _, event := range window.Events {
		if event.Kind == kind && event.Timestamp.After(since) {
			count++
		}
	}

	return count
}

// Cumulative returns the all-time counter for kind, surviving event pruning.
func (s *TrackingStore) Cumulative(key, kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, exists := s.windows[key]
	if !exists {
		return 0
	}

	return window.Counters[kind]
}

// DistinctKinds returns how many different kinds were ever counted for key.
func (s *TrackingStore) DistinctKinds(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, exists := s.windows[key]
	if !exists {
		return 0
	}

	return len(window.Counters)
}

// PruneIdle drops windows without activity since the cutoff and returns how
// many were removed.
func (s *TrackingStore) PruneIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, window := range s.windows {
		if window.LastSeen.Before(cutoff) {
			delete(s.windows, key)
			removed++
		}
	}

	return removed
}

func (s *TrackingStore) WindowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *TrackingStore) pruneWindowLocked(window *TrackingWindow, cutoff time.Time) {
	firstFresh := 0
	for firstFresh < len(window.Events) && window.Events[firstFresh].Timestamp.Before(cutoff) {
		firstFresh++
	}

	if firstFresh > 0 {
		window.Events = window.Events[firstFresh:]
	}
}
