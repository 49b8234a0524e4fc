package logs_pipeline

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"logwarden/internal/features/correlation"
	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/features/policies"
	"logwarden/internal/features/threats"
)

const processingBudget = 5 * time.Second

// PolicyResolver supplies the per-tenant module policy. Resolution never
// fails; errors degrade to defaults inside the resolver.
type PolicyResolver interface {
	GetPolicy(tenantID string) *policies.ModulePolicy
}

// ViolationReporter receives tenant-isolation breaches caught during
// ingestion.
type ViolationReporter interface {
	EvaluateCrossTenant(operation *threats.CrossTenantOperationDTO) []*threats.Violation
}

// SecurityEventPublisher hands detected events off for asynchronous audit
// delivery. Publishing is best-effort; failures never block storage.
type SecurityEventPublisher interface {
	Publish(events []*logs_core.SecurityEvent)
}

// PipelineService drives each entry through the processing state machine:
// RECEIVED, then either the essential fast path or the detailed path,
// CORRELATED, SECURITY_SCANNED, STORED. ProcessLog never panics out.
type PipelineService struct {
	policyResolver    PolicyResolver
	correlation       *correlation.CorrelationService
	store             logs_core.LogStore
	validator         *EntryValidator
	scanner           *SecurityScanner
	violationReporter ViolationReporter
	eventPublisher    SecurityEventPublisher
	logger            *slog.Logger

	totalProcessed         atomic.Int64
	successfullyProcessed  atomic.Int64
	failed                 atomic.Int64
	securityEventsDetected atomic.Int64
	correlationsCreated    atomic.Int64
}

func NewPipelineService(
	policyResolver PolicyResolver,
	correlationService *correlation.CorrelationService,
	store logs_core.LogStore,
	logger *slog.Logger,
) *PipelineService {
	return &PipelineService{
		policyResolver: policyResolver,
		correlation:    correlationService,
		store:          store,
		validator:      &EntryValidator{},
		scanner:        NewSecurityScanner(),
		logger:         logger,
	}
}

func (s *PipelineService) SetViolationReporter(reporter ViolationReporter) {
	s.violationReporter = reporter
}

func (s *PipelineService) SetEventPublisher(publisher SecurityEventPublisher) {
	s.eventPublisher = publisher
}

// ProcessLog runs one entry through the pipeline and always returns a
// result. Unexpected faults in any stage are caught at this boundary and
// converted into a FAILED_INTERNAL result.
func (s *PipelineService) ProcessLog(request *ProcessLogRequestDTO) (result *ProcessLogResultDTO) {
	started := time.Now()
	s.totalProcessed.Add(1)

	result = &ProcessLogResultDTO{State: StateReceived}
	defer s.finish(result, started)

	entry, policy := s.prepare(request, result)
	if entry == nil {
		return result
	}

	location, err := s.store.Store(entry, &logs_core.StoreOptions{
		StorageType:   entry.StorageType,
		Essential:     entry.Essential,
		ModuleEnabled: policy.Enabled,
	})
	if err != nil {
		s.logger.Error("log storage failed",
			slog.String("tenantId", entry.TenantID),
			slog.String("error", err.Error()))
		return s.fail(result, StateFailedStorage, &logs_core.ValidationError{
			Code:    logs_core.ErrorStorageUnavailable,
			Message: "log store unreachable",
		})
	}

	result.StorageLocation = location
	s.succeed(result)

	return result
}

// ProcessBatch runs each entry through the pre-storage stages, then writes
// every surviving entry with one bulk store call. A bulk failure fails
// exactly the entries that were pending storage; per-entry validation and
// isolation outcomes are unaffected.
func (s *PipelineService) ProcessBatch(requests []*ProcessLogRequestDTO) []*ProcessLogResultDTO {
	results := make([]*ProcessLogResultDTO, len(requests))

	var pendingIndexes []int
	var pendingEntries []*logs_core.LogEntry

	for i, request := range requests {
		s.totalProcessed.Add(1)
		result := &ProcessLogResultDTO{State: StateReceived}
		results[i] = result

		func() {
			started := time.Now()
			defer s.finish(result, started)

			if entry, _ := s.prepare(request, result); entry != nil {
				pendingIndexes = append(pendingIndexes, i)
				pendingEntries = append(pendingEntries, entry)
			}
		}()
	}

	if len(pendingEntries) == 0 {
		return results
	}

	locations, err := s.store.StoreBatch(pendingEntries)
	if err != nil {
		s.logger.Error("bulk log storage failed",
			slog.Int("entries", len(pendingEntries)),
			slog.String("error", err.Error()))
		for _, index := range pendingIndexes {
			s.fail(results[index], StateFailedStorage, &logs_core.ValidationError{
				Code:    logs_core.ErrorStorageUnavailable,
				Message: "log store unreachable",
			})
		}
		return results
	}

	for position, index := range pendingIndexes {
		if position < len(locations) {
			results[index].StorageLocation = locations[position]
		}
		s.succeed(results[index])
	}

	return results
}

// prepare runs every stage short of storage: policy resolution,
// essentiality, validation, isolation, correlation and scanning. A terminal
// failure marks the result and returns a nil entry; otherwise the returned
// entry is classified and ready to persist.
func (s *PipelineService) prepare(
	request *ProcessLogRequestDTO,
	result *ProcessLogResultDTO,
) (*logs_core.LogEntry, *policies.ModulePolicy) {
	entry := request.Entry
	if entry == nil {
		s.fail(result, StateFailedValidation, &logs_core.ValidationError{
			Code:    logs_core.ErrorMissingField,
			Message: "log entry is required",
		})
		return nil, nil
	}

	if request.ClientIP != "" && entry.ClientIP == "" {
		entry.ClientIP = request.ClientIP
	}

	policy := s.policyResolver.GetPolicy(entry.TenantID)

	entry.Essential = s.isEssential(entry)

	// A disabled module demotes detailed entries to the minimal path
	// instead of dropping them.
	minimalPath := entry.Essential
	if !entry.Essential && !policy.Enabled {
		minimalPath = true
		result.Warnings = append(result.Warnings,
			"tenant module disabled, entry demoted to minimal processing")
	}

	if minimalPath {
		if validationErr := s.validator.ValidateEssential(entry); validationErr != nil {
			s.fail(result, StateFailedValidation, validationErr)
			return nil, nil
		}
		// The minimal path skips timestamp validation, but nothing is
		// persisted without a valid instant.
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now().UTC()
			result.Warnings = append(result.Warnings,
				"timestamp missing or unparseable, defaulted to ingestion time")
		}
	} else {
		validationErr, warnings := s.validator.ValidateDetailed(entry)
		if validationErr != nil {
			s.fail(result, StateFailedValidation, validationErr)
			return nil, nil
		}
		result.Warnings = append(result.Warnings, warnings...)
	}

	if request.RequestTenantID != "" && entry.TenantID != request.RequestTenantID {
		s.reportIsolationViolation(request, entry)
		s.fail(result, StateFailedIsolation, &logs_core.ValidationError{
			Code:    logs_core.ErrorIsolationViolation,
			Message: "entry tenant does not match the authenticated request tenant",
			Field:   "tenantId",
		})
		return nil, nil
	}

	if err := s.resolveCorrelation(entry); err != nil {
		// Non-fatal: continue with a freshly generated id
		entry.CorrelationID = s.correlation.Generate("log")
		s.correlationsCreated.Add(1)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("correlation resolution failed, assigned fresh id: %v", err))
	}
	result.CorrelationID = entry.CorrelationID
	result.State = StateCorrelated

	events := s.scanner.ScanCritical(entry)
	if !minimalPath && policy.SecurityLogging {
		events = append(events, s.scanner.ScanDetailed(entry)...)
	}
	if len(events) > 0 {
		s.securityEventsDetected.Add(int64(len(events)))
		if s.eventPublisher != nil {
			s.eventPublisher.Publish(events)
		}
	}
	result.SecurityEvents = events
	result.State = StateSecurityScanned

	entry.StorageType = classifyStorageType(entry, events)

	return entry, policy
}

// finish is the deferred pipeline boundary: it converts panics into a
// FAILED_INTERNAL result and applies the soft processing budget.
func (s *PipelineService) finish(result *ProcessLogResultDTO, started time.Time) {
	if recovered := recover(); recovered != nil {
		s.logger.Error("pipeline stage panicked",
			slog.Any("panic", recovered))
		s.failed.Add(1)
		result.Success = false
		result.State = StateFailedInternal
		result.Error = &logs_core.ValidationError{
			Code:    logs_core.ErrorProcessingFault,
			Message: fmt.Sprintf("unexpected processing fault: %v", recovered),
		}
	}
	result.ProcessingTimeMs = time.Since(started).Milliseconds()
	if elapsed := time.Since(started); elapsed > processingBudget {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("processing took %s, over the %s budget", elapsed, processingBudget))
	}
}

func (s *PipelineService) succeed(result *ProcessLogResultDTO) {
	result.State = StateStored
	result.Success = true
	s.successfullyProcessed.Add(1)
}

// Stats reports the pipeline counters. Success rate is 1.0 before any entry
// has been processed.
func (s *PipelineService) Stats() *PipelineStatsDTO {
	total := s.totalProcessed.Load()
	success := s.successfullyProcessed.Load()

	successRate := 1.0
	if total > 0 {
		successRate = float64(success) / float64(total)
	}

	return &PipelineStatsDTO{
		TotalProcessed:         total,
		SuccessfullyProcessed:  success,
		Failed:                 s.failed.Load(),
		SecurityEventsDetected: s.securityEventsDetected.Load(),
		CorrelationsCreated:    s.correlationsCreated.Load(),
		SuccessRate:            successRate,
	}
}

// PruneScannerWindows drops idle per-user detection windows.
func (s *PipelineService) PruneScannerWindows(cutoff time.Time) int {
	return s.scanner.PruneIdle(cutoff)
}

func (s *PipelineService) isEssential(entry *logs_core.LogEntry) bool {
	if entry.Level == logs_core.LogLevelError {
		return true
	}

	for _, flag := range []string{"security", "audit", "essential"} {
		if metaFlag(entry.Meta, flag) {
			return true
		}
	}

	return ContainsCriticalPattern(entry.Message)
}

func (s *PipelineService) resolveCorrelation(entry *logs_core.LogEntry) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("correlation fault: %v", recovered)
		}
	}()

	if entry.CorrelationID == "" || !s.correlation.IsValid(entry.CorrelationID) {
		entry.CorrelationID = s.correlation.Generate("log")
		s.correlationsCreated.Add(1)
	}

	s.correlation.Store(entry.CorrelationID, correlation.RequestContext{
		UserID:    entry.UserID,
		TenantID:  entry.TenantID,
		SessionID: entry.SessionID,
		StartTime: entry.Timestamp,
	})

	if entry.SessionID != "" {
		s.correlation.Link(entry.CorrelationID, "session_"+entry.SessionID, "session")
	}

	return nil
}

func (s *PipelineService) reportIsolationViolation(request *ProcessLogRequestDTO, entry *logs_core.LogEntry) {
	if s.violationReporter == nil {
		return
	}

	s.violationReporter.EvaluateCrossTenant(&threats.CrossTenantOperationDTO{
		UserID:         entry.UserID,
		HomeTenantID:   request.RequestTenantID,
		TargetTenantID: entry.TenantID,
		Operation:      "log_ingest",
		ClientIP:       request.ClientIP,
		CorrelationID:  entry.CorrelationID,
	})
}

func (s *PipelineService) fail(
	result *ProcessLogResultDTO,
	state ProcessingState,
	validationErr *logs_core.ValidationError,
) *ProcessLogResultDTO {
	s.failed.Add(1)
	result.Success = false
	result.State = state
	result.Error = validationErr
	return result
}

// classifyStorageType routes an entry in strict priority order: security
// events beat error level, which beats the performance and audit meta flags.
func classifyStorageType(entry *logs_core.LogEntry, events []*logs_core.SecurityEvent) logs_core.StorageType {
	switch {
	case len(events) > 0:
		return logs_core.StorageTypeSecurity
	case entry.Level == logs_core.LogLevelError:
		return logs_core.StorageTypeError
	case metaFlag(entry.Meta, "performance"):
		return logs_core.StorageTypePerformance
	case metaFlag(entry.Meta, "audit"):
		return logs_core.StorageTypeAudit
	default:
		return logs_core.StorageTypeGeneral
	}
}

func metaFlag(meta map[string]any, key string) bool {
	if meta == nil {
		return false
	}

	switch value := meta[key].(type) {
	case bool:
		return value
	case string:
		return value == "true"
	default:
		return false
	}
}
