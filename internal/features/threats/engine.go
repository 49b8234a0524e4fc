package threats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"logwarden/internal/config"
	logs_core "logwarden/internal/features/logs/core"
)

const (
	analyzerInterval      = 5 * time.Minute
	cleanupInterval       = time.Hour
	coordinatedWindow     = time.Hour
	coordinatedMinKeys    = 3
	coordinatedMinTenants = 5
	coordinatedMinUsers   = 3
	trackingIdleRetention = 24 * time.Hour
)

// AuditSink receives high and critical violations for durable audit.
type AuditSink interface {
	Record(
		tenantID, userID, eventType string,
		severity logs_core.Severity,
		message, correlationID string,
	)
}

// ThreatDetectionEngine fans requests out to the monitors, keeps a rolling
// one-hour sample of violations for the coordinated-attack analyzer, and
// forwards high/critical findings to the audit sink.
type ThreatDetectionEngine struct {
	adminMonitor          *AdminAccessMonitor
	crossTenantMonitor    *CrossTenantMonitor
	infrastructureMonitor *InfrastructureMonitor
	logger                *slog.Logger

	sinkMu    sync.RWMutex
	auditSink AuditSink

	recentMu         sync.Mutex
	recentViolations []*Violation

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewThreatDetectionEngine(metrics SystemMetricsProvider, logger *slog.Logger) *ThreatDetectionEngine {
	return &ThreatDetectionEngine{
		adminMonitor: &AdminAccessMonitor{
			tracking: NewTrackingStore(),
		},
		crossTenantMonitor: &CrossTenantMonitor{
			tracking: NewTrackingStore(),
		},
		infrastructureMonitor: &InfrastructureMonitor{
			tracking:  NewTrackingStore(),
			metrics:   metrics,
			logger:    logger,
			cooldowns: make(map[string]time.Time),
		},
		logger: logger,
	}
}

func (e *ThreatDetectionEngine) SetAuditSink(sink AuditSink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.auditSink = sink
}

func (e *ThreatDetectionEngine) EvaluateAdminAccess(request *AdminAccessRequestDTO) []*Violation {
	violations := e.adminMonitor.Detect(request)
	e.handleViolations(violations)
	return violations
}

func (e *ThreatDetectionEngine) EvaluateCrossTenant(operation *CrossTenantOperationDTO) []*Violation {
	violations := e.crossTenantMonitor.Detect(operation)
	e.handleViolations(violations)
	return violations
}

func (e *ThreatDetectionEngine) EvaluateInfrastructure(request *InfrastructureRequestDTO) []*Violation {
	violations := e.infrastructureMonitor.Detect(request)
	e.handleViolations(violations)
	return violations
}

// AnalyzeCoordinatedAttacks inspects the last hour of violations and reports
// a coordinated attack when at least three distinct source keys violated
// together with either five affected tenants or three acting users.
func (e *ThreatDetectionEngine) AnalyzeCoordinatedAttacks() *Violation {
	cutoff := time.Now().UTC().Add(-coordinatedWindow)

	e.recentMu.Lock()
	e.pruneRecentLocked(cutoff)
	sample := make([]*Violation, len(e.recentViolations))
	copy(sample, e.recentViolations)
	e.recentMu.Unlock()

	sourceKeys := make(map[string]struct{})
	tenants := make(map[string]struct{})
	users := make(map[string]struct{})

	for _, violation := range sample {
		if violation.Type == ViolationCoordinatedAttack {
			continue
		}

		if violation.SourceKey != "" {
			sourceKeys[violation.SourceKey] = struct{}{}
		}
		if violation.TenantID != "" {
			tenants[violation.TenantID] = struct{}{}
		}
		if violation.UserID != "" {
			users[violation.UserID] = struct{}{}
		}
	}

	if len(sourceKeys) < coordinatedMinKeys {
		return nil
	}

	if len(tenants) < coordinatedMinTenants && len(users) < coordinatedMinUsers {
		return nil
	}

	violation := newViolation(
		ViolationCoordinatedAttack,
		logs_core.SeverityCritical,
		fmt.Sprintf("coordinated attack: %d violating sources across %d tenants and %d users within the last hour",
			len(sourceKeys), len(tenants), len(users)),
	)
	violation.Forensics["violatingSources"] = len(sourceKeys)
	violation.Forensics["affectedTenants"] = len(tenants)
	violation.Forensics["actingUsers"] = len(users)
	violation.Forensics["sampleSize"] = len(sample)

	e.handleViolations([]*Violation{violation})

	return violation
}

func (e *ThreatDetectionEngine) RecentViolationCount() int {
	e.recentMu.Lock()
	defer e.recentMu.Unlock()
	return len(e.recentViolations)
}

func (e *ThreatDetectionEngine) StartWorkers() {
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.wg.Add(2)
	go e.analyzerWorker()
	go e.cleanupWorker()

	e.logger.Info("Threat detection workers started",
		slog.Duration("analyzerInterval", analyzerInterval),
		slog.Duration("cleanupInterval", cleanupInterval))
}

func (e *ThreatDetectionEngine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *ThreatDetectionEngine) handleViolations(violations []*Violation) {
	if len(violations) == 0 {
		return
	}

	e.recentMu.Lock()
	e.recentViolations = append(e.recentViolations, violations...)
	e.pruneRecentLocked(time.Now().UTC().Add(-coordinatedWindow))
	e.recentMu.Unlock()

	e.sinkMu.RLock()
	sink := e.auditSink
	e.sinkMu.RUnlock()

	for _, violation := range violations {
		e.logger.Warn("security violation detected",
			slog.String("type", string(violation.Type)),
			slog.String("severity", string(violation.Severity)),
			slog.String("tenantId", violation.TenantID),
			slog.String("description", violation.Description))

		if sink != nil && violation.Severity.AtLeast(logs_core.SeverityHigh) {
			correlationID, _ := violation.Forensics["correlationId"].(string)
			sink.Record(
				violation.TenantID,
				violation.UserID,
				string(violation.Type),
				violation.Severity,
				violation.Description,
				correlationID,
			)
		}
	}
}

func (e *ThreatDetectionEngine) pruneRecentLocked(cutoff time.Time) {
	firstFresh := 0
	for firstFresh < len(e.recentViolations) && e.recentViolations[firstFresh].Timestamp.Before(cutoff) {
		firstFresh++
	}

	if firstFresh > 0 {
		e.recentViolations = e.recentViolations[firstFresh:]
	}
}

func (e *ThreatDetectionEngine) analyzerWorker() {
	defer e.wg.Done()

	ticker := time.NewTicker(analyzerInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			e.logger.Info("Coordinated attack analyzer shutting down due to shutdown signal")
			return
		}

		select {
		case <-e.ctx.Done():
			e.logger.Info("Coordinated attack analyzer shutting down")
			return

		case <-ticker.C:
			if violation := e.AnalyzeCoordinatedAttacks(); violation != nil {
				e.logger.Error("coordinated attack detected",
					slog.String("description", violation.Description))
			}
		}
	}
}

func (e *ThreatDetectionEngine) cleanupWorker() {
	defer e.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			e.logger.Info("Threat tracking cleanup shutting down due to shutdown signal")
			return
		}

		select {
		case <-e.ctx.Done():
			e.logger.Info("Threat tracking cleanup shutting down")
			return

		case <-ticker.C:
			e.Cleanup()
		}
	}
}

// Cleanup prunes tracking windows idle past 24h and stale cooldowns.
func (e *ThreatDetectionEngine) Cleanup() {
	cutoff := time.Now().UTC().Add(-trackingIdleRetention)

	removedWindows := e.adminMonitor.tracking.PruneIdle(cutoff) +
		e.crossTenantMonitor.tracking.PruneIdle(cutoff) +
		e.infrastructureMonitor.tracking.PruneIdle(cutoff)
	removedCooldowns := e.infrastructureMonitor.PruneCooldowns(time.Now().UTC())

	if removedWindows > 0 || removedCooldowns > 0 {
		e.logger.Info("Pruned threat tracking state",
			slog.Int("windows", removedWindows),
			slog.Int("cooldowns", removedCooldowns))
	}
}
