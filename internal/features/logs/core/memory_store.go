package logs_core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryLogStore keeps entries in process memory. Used by tests and by
// local development without an OpenSearch node.
type MemoryLogStore struct {
	mu      sync.RWMutex
	entries []*LogEntry

	// Tenants whose reads and writes fail, to simulate a partially
	// unavailable sink.
	failingTenants map[string]bool
}

func NewMemoryLogStore() *MemoryLogStore {
	return &MemoryLogStore{
		failingTenants: make(map[string]bool),
	}
}

func (s *MemoryLogStore) FailTenant(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failingTenants[tenantID] = true
}

func (s *MemoryLogStore) Store(entry *LogEntry, opts *StoreOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failingTenants[entry.TenantID] {
		return "", fmt.Errorf("log store unavailable for tenant %s", entry.TenantID)
	}

	stored := *entry
	if opts != nil {
		stored.StorageType = opts.StorageType
		stored.Essential = opts.Essential
	}

	s.entries = append(s.entries, &stored)

	return fmt.Sprintf("memory/%s", stored.ID.String()), nil
}

func (s *MemoryLogStore) StoreBatch(entries []*LogEntry) ([]string, error) {
	locations := make([]string, 0, len(entries))
	for _, entry := range entries {
		location, err := s.Store(entry, nil)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

func (s *MemoryLogStore) Query(params *QueryParams) (*QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failingTenants[params.TenantID] {
		return nil, fmt.Errorf("log store unavailable for tenant %s", params.TenantID)
	}

	var matched []*LogEntry
	for _, entry := range s.entries {
		if s.matches(entry, params) {
			matched = append(matched, entry)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if params.SortDescending {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	total := int64(len(matched))

	offset := max(params.Offset, 0)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit < len(matched) {
		matched = matched[:limit]
	}

	return &QueryResult{Logs: matched, Total: total}, nil
}

func (s *MemoryLogStore) DeleteOld(tenantID string, olderThan time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.TenantID == tenantID && entry.Timestamp.Before(olderThan) {
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept

	return nil
}

func (s *MemoryLogStore) Ping() error {
	return nil
}

func (s *MemoryLogStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryLogStore) matches(entry *LogEntry, params *QueryParams) bool {
	if entry.TenantID != params.TenantID {
		return false
	}

	if len(params.Levels) > 0 && !containsLevel(params.Levels, entry.Level) {
		return false
	}

	if len(params.StorageTypes) > 0 && !containsStorageType(params.StorageTypes, entry.StorageType) {
		if !params.IncludeEssential || !entry.Essential {
			return false
		}
	}

	if params.EssentialOnly && !entry.Essential {
		return false
	}

	if params.UserID != "" && entry.UserID != params.UserID {
		return false
	}

	if params.CorrelationID != "" && entry.CorrelationID != params.CorrelationID {
		return false
	}

	if params.MessageContains != "" &&
		!strings.Contains(strings.ToLower(entry.Message), strings.ToLower(params.MessageContains)) {
		return false
	}

	if params.From != nil && entry.Timestamp.Before(*params.From) {
		return false
	}

	if params.To != nil && entry.Timestamp.After(*params.To) {
		return false
	}

	return true
}

func containsLevel(levels []LogLevel, level LogLevel) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

func containsStorageType(types []StorageType, storageType StorageType) bool {
	for _, t := range types {
		if t == storageType {
			return true
		}
	}
	return false
}
