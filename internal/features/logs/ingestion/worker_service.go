package logs_ingestion

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"logwarden/internal/config"
	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/features/policies"
	cache_utils "logwarden/internal/util/cache"
)

const (
	securityEventsQueueKey = "logwarden:security:events"
	flushInterval          = 5 * time.Second
	flushBatchSize         = 100
	retentionInterval      = time.Hour
)

// AuditSink receives flushed high and critical security events. Wired in
// SetupDependencies to avoid an import cycle.
type AuditSink interface {
	Record(
		tenantID, userID, eventType string,
		severity logs_core.Severity,
		message, correlationID string,
	)
}

// SecurityEventWorker decouples detection from audit persistence: the
// pipeline publishes events to a Valkey queue and this worker drains them in
// the background. Delivery is at-least-once.
type SecurityEventWorker struct {
	queue  *cache_utils.ValkeyQueueService
	logger *slog.Logger

	sinkMu    sync.RWMutex
	auditSink AuditSink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSecurityEventWorker(queue *cache_utils.ValkeyQueueService, logger *slog.Logger) *SecurityEventWorker {
	return &SecurityEventWorker{
		queue:  queue,
		logger: logger,
	}
}

func (w *SecurityEventWorker) SetAuditSink(sink AuditSink) {
	w.sinkMu.Lock()
	defer w.sinkMu.Unlock()
	w.auditSink = sink
}

// Publish enqueues detected events for background delivery. Failures are
// logged and swallowed so detection can never block log storage.
func (w *SecurityEventWorker) Publish(events []*logs_core.SecurityEvent) {
	items := make([][]byte, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			w.logger.Warn("failed to marshal security event",
				slog.String("type", event.Type),
				slog.String("error", err.Error()))
			continue
		}
		items = append(items, payload)
	}

	if err := w.queue.EnqueueBatch(securityEventsQueueKey, items); err != nil {
		w.logger.Warn("failed to enqueue security events",
			slog.Int("count", len(items)),
			slog.String("error", err.Error()))
	}
}

func (w *SecurityEventWorker) StartWorkers() {
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.wg.Add(1)
	go w.flushWorker()

	w.logger.Info("Security event flush worker started", slog.Duration("interval", flushInterval))
}

func (w *SecurityEventWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *SecurityEventWorker) flushWorker() {
	defer w.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			w.FlushOnce()
			w.logger.Info("Security event worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-w.ctx.Done():
			w.FlushOnce()
			w.logger.Info("Security event worker shutting down")
			return

		case <-ticker.C:
			w.FlushOnce()
		}
	}
}

// FlushOnce drains up to one batch from the queue and forwards high and
// critical events to the audit sink. Returns the number of events handled.
func (w *SecurityEventWorker) FlushOnce() int {
	items, err := w.queue.DequeueBatch(securityEventsQueueKey, flushBatchSize, flushInterval)
	if err != nil {
		w.logger.Warn("failed to dequeue security events", slog.String("error", err.Error()))
		return 0
	}

	if len(items) == 0 {
		return 0
	}

	w.sinkMu.RLock()
	sink := w.auditSink
	w.sinkMu.RUnlock()

	handled := 0
	for _, item := range items {
		var event logs_core.SecurityEvent
		if err := json.Unmarshal(item, &event); err != nil {
			w.logger.Warn("dropping malformed security event", slog.String("error", err.Error()))
			continue
		}

		if sink != nil && event.Severity.AtLeast(logs_core.SeverityHigh) {
			sink.Record(
				event.TenantID,
				event.UserID,
				event.Type,
				event.Severity,
				event.Description,
				event.CorrelationID,
			)
		}
		handled++
	}

	return handled
}

// RetentionWorker enforces per-tenant retention by deleting stored entries
// older than the tenant's configured window.
type RetentionWorker struct {
	policyService *policies.PolicyService
	store         logs_core.LogStore
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRetentionWorker(
	policyService *policies.PolicyService,
	store logs_core.LogStore,
	logger *slog.Logger,
) *RetentionWorker {
	return &RetentionWorker{
		policyService: policyService,
		store:         store,
		logger:        logger,
	}
}

func (w *RetentionWorker) StartWorkers() {
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.wg.Add(1)
	go w.retentionWorker()

	w.logger.Info("Retention worker started", slog.Duration("interval", retentionInterval))
}

func (w *RetentionWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *RetentionWorker) retentionWorker() {
	defer w.wg.Done()

	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			w.logger.Info("Retention worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-w.ctx.Done():
			w.logger.Info("Retention worker shutting down")
			return

		case <-ticker.C:
			w.EnforceOnce()
		}
	}
}

// EnforceOnce applies retention for every known tenant. A failing tenant is
// logged and skipped; the sweep continues.
func (w *RetentionWorker) EnforceOnce() {
	tenantIDs, err := w.policyService.ListTenantIDs()
	if err != nil {
		w.logger.Warn("failed to list tenants for retention", slog.String("error", err.Error()))
		return
	}

	now := time.Now().UTC()
	for _, tenantID := range tenantIDs {
		policy := w.policyService.GetPolicy(tenantID)
		if policy.RetentionDays <= 0 {
			continue
		}

		cutoff := now.AddDate(0, 0, -policy.RetentionDays)
		if err := w.store.DeleteOld(tenantID, cutoff); err != nil {
			w.logger.Warn("retention sweep failed for tenant",
				slog.String("tenantId", tenantID),
				slog.String("error", err.Error()))
		}
	}
}
