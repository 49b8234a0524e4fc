package correlation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"logwarden/internal/config"
)

const (
	recordTTL     = 24 * time.Hour
	sweepInterval = 1 * time.Hour
)

// CorrelationService links related log entries across producers. Records are
// in-memory with a 24h idle TTL; expiry is lazy on read plus an hourly sweep.
type CorrelationService struct {
	mu      sync.Mutex
	records map[string]*CorrelationRecord
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCorrelationService(logger *slog.Logger) *CorrelationService {
	return &CorrelationService{
		records: make(map[string]*CorrelationRecord),
		logger:  logger,
	}
}

// Generate produces "{prefix}_{base36 unix millis}_{8 hex chars}".
// Collisions are not resolved; the random fragment carries the entropy.
func (s *CorrelationService) Generate(prefix string) string {
	if prefix == "" {
		prefix = "corr"
	}

	fragment := make([]byte, 4)
	if _, err := rand.Read(fragment); err != nil {
		// Extremely unlikely; degrade to a time-only fragment
		return prefix + "_" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "_00000000"
	}

	return prefix + "_" +
		strconv.FormatInt(time.Now().UnixMilli(), 36) + "_" +
		hex.EncodeToString(fragment)
}

// IsValid requires at least three underscore-delimited segments and a
// non-empty prefix segment.
func (s *CorrelationService) IsValid(id string) bool {
	segments := strings.Split(id, "_")
	if len(segments) < 3 {
		return false
	}

	return segments[0] != ""
}

func (s *CorrelationService) Store(id string, requestContext RequestContext) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		record = &CorrelationRecord{
			CorrelationID: id,
			LinkedIDs:     make(map[string]string),
			CreatedAt:     now,
		}
		s.records[id] = record
	}

	record.Context = requestContext
	record.UpdatedAt = now
}

// Get returns the stored context, lazily deleting records idle past the TTL.
func (s *CorrelationService) Get(id string) *RequestContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return nil
	}

	if time.Since(record.UpdatedAt) > recordTTL {
		delete(s.records, id)
		return nil
	}

	contextCopy := record.Context
	return &contextCopy
}

// Link records the relationship symmetrically in both directions, creating
// placeholder records for ids not seen before.
func (s *CorrelationService) Link(a, b, relationship string) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	recordA := s.ensureRecordLocked(a, now)
	recordB := s.ensureRecordLocked(b, now)

	recordA.LinkedIDs[b] = relationship
	recordB.LinkedIDs[a] = relationship
	recordA.UpdatedAt = now
	recordB.UpdatedAt = now
}

// GetLinked returns the contexts of directly linked records. Links are not
// followed transitively.
func (s *CorrelationService) GetLinked(id string) map[string]RequestContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return nil
	}

	linked := make(map[string]RequestContext, len(record.LinkedIDs))
	for linkedID := range record.LinkedIDs {
		if linkedRecord, ok := s.records[linkedID]; ok {
			linked[linkedID] = linkedRecord.Context
		}
	}

	return linked
}

func (s *CorrelationService) RecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *CorrelationService) StartSweeper() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go s.sweepWorker()

	s.logger.Info("Correlation sweeper started", slog.Duration("interval", sweepInterval))
}

func (s *CorrelationService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *CorrelationService) sweepWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Correlation sweeper shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Correlation sweeper shutting down")
			return

		case <-ticker.C:
			removed := s.SweepExpired()
			if removed > 0 {
				s.logger.Info("Swept expired correlation records", slog.Int("removed", removed))
			}
		}
	}
}

func (s *CorrelationService) SweepExpired() int {
	cutoff := time.Now().Add(-recordTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.records {
		if record.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}

	return removed
}

func (s *CorrelationService) ensureRecordLocked(id string, now time.Time) *CorrelationRecord {
	record, exists := s.records[id]
	if !exists {
		record = &CorrelationRecord{
			CorrelationID: id,
			LinkedIDs:     make(map[string]string),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.records[id] = record
	}

	return record
}
