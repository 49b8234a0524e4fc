package gateway

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"logwarden/internal/features/actors"
	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/features/policies"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultFetchLimit    = 100
	maxFetchLimit        = 1000
	aggregateTenantLimit = 100
	aggregateConcurrency = 8
	exportRefillInterval = 10 * time.Second
	exportBurst          = 3
)

// PolicyResolver supplies per-tenant module policies without failing.
type PolicyResolver interface {
	GetPolicy(tenantID string) *policies.ModulePolicy
}

// TenantLister enumerates every tenant known to the platform.
type TenantLister interface {
	ListTenantIDs() ([]string, error)
}

// GatewayService is the tiered read path over the log store. Platform
// admins get universal access with policy bypassed; company admins are
// restricted to their own tenant and gated by its policy. Every decision
// and fetch lands in the audit trail.
type GatewayService struct {
	policyResolver PolicyResolver
	tenantLister   TenantLister
	store          logs_core.LogStore
	auditTrail     *AccessAuditTrail
	logger         *slog.Logger

	exportMu       sync.Mutex
	exportLimiters map[string]*rate.Limiter
}

func NewGatewayService(
	policyResolver PolicyResolver,
	tenantLister TenantLister,
	store logs_core.LogStore,
	logger *slog.Logger,
) *GatewayService {
	return &GatewayService{
		policyResolver: policyResolver,
		tenantLister:   tenantLister,
		store:          store,
		auditTrail:     NewAccessAuditTrail(),
		logger:         logger,
		exportLimiters: make(map[string]*rate.Limiter),
	}
}

// ValidateAccess decides whether the actor may read the target tenant's
// logs, with a distinct reason for every denial. Decisions are audited.
func (s *GatewayService) ValidateAccess(
	actor *actors.Actor,
	targetTenant string,
) (*policies.ModulePolicy, AccessType, *logs_core.AccessError) {
	policy := s.policyResolver.GetPolicy(targetTenant)

	var accessType AccessType
	var accessErr *logs_core.AccessError

	switch {
	case actor.Role.IsPlatformAdmin():
		accessType = AccessTypeUniversal

	case !actor.Role.IsCompanyAdmin():
		accessErr = &logs_core.AccessError{
			Reason:  logs_core.AccessDeniedInsufficientPrivilege,
			Message: fmt.Sprintf("role %q has no log access", actor.Role),
		}

	case actor.TenantID != targetTenant:
		accessErr = &logs_core.AccessError{
			Reason:  logs_core.AccessDeniedCrossTenant,
			Message: fmt.Sprintf("actor of tenant %s may not read tenant %s", actor.TenantID, targetTenant),
		}

	case !policy.Enabled:
		accessErr = &logs_core.AccessError{
			Reason:  logs_core.AccessDeniedModuleDisabled,
			Message: fmt.Sprintf("logging module is disabled for tenant %s", targetTenant),
		}

	default:
		accessType = AccessTypeRestricted
	}

	auditEntry := &AccessAuditEntry{
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		TargetTenant: targetTenant,
		Operation:    "validate_access",
		Allowed:      accessErr == nil,
	}
	if accessErr != nil {
		auditEntry.Reason = string(accessErr.Reason)
	}
	s.auditTrail.Append(auditEntry)

	if accessErr != nil {
		return nil, "", accessErr
	}

	return policy, accessType, nil
}

func (s *GatewayService) GetLogs(
	actor *actors.Actor,
	tenantID string,
	options *GetLogsOptionsDTO,
) (*LogAccessResponseDTO, error) {
	return s.fetch(actor, tenantID, options, "get_logs")
}

// SearchLogs is GetLogs with a required message filter.
func (s *GatewayService) SearchLogs(
	actor *actors.Actor,
	tenantID string,
	options *GetLogsOptionsDTO,
) (*LogAccessResponseDTO, error) {
	if options == nil || options.MessageContains == "" {
		return nil, &logs_core.ValidationError{
			Code:    logs_core.ErrorMissingField,
			Message: "search requires a message filter",
			Field:   "messageContains",
		}
	}

	return s.fetch(actor, tenantID, options, "search_logs")
}

// ExportLogs runs a fetch under a per-actor throttle so bulk pulls cannot
// starve interactive readers.
func (s *GatewayService) ExportLogs(
	actor *actors.Actor,
	tenantID string,
	options *GetLogsOptionsDTO,
) (*LogAccessResponseDTO, error) {
	if !s.exportLimiter(actor.ID).Allow() {
		s.auditTrail.Append(&AccessAuditEntry{
			ActorID:      actor.ID,
			ActorRole:    string(actor.Role),
			TargetTenant: tenantID,
			Operation:    "export_logs",
			Allowed:      false,
			Reason:       logs_core.ErrorRateLimitExceeded,
		})
		return nil, &logs_core.ValidationError{
			Code:    logs_core.ErrorRateLimitExceeded,
			Message: "export rate limit exceeded, retry later",
		}
	}

	return s.fetch(actor, tenantID, options, "export_logs")
}

// AggregateAllCompanyLogs fetches every tenant's recent logs concurrently.
// One tenant's failure yields an empty result for that tenant without
// aborting the rest; the merged view is sorted by timestamp descending.
func (s *GatewayService) AggregateAllCompanyLogs(actor *actors.Actor) (*AggregateResponseDTO, error) {
	if !actor.Role.IsPlatformAdmin() {
		s.auditTrail.Append(&AccessAuditEntry{
			ActorID:   actor.ID,
			ActorRole: string(actor.Role),
			Operation: "aggregate_all",
			Allowed:   false,
			Reason:    string(logs_core.AccessDeniedInsufficientPrivilege),
		})
		return nil, &logs_core.AccessError{
			Reason:  logs_core.AccessDeniedInsufficientPrivilege,
			Message: "aggregation requires a platform administrator",
		}
	}

	tenantIDs, err := s.tenantLister.ListTenantIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	results := make([]*LogAccessResponseDTO, len(tenantIDs))

	var group errgroup.Group
	group.SetLimit(aggregateConcurrency)

	for i, tenantID := range tenantIDs {
		i, tenantID := i, tenantID
		group.Go(func() error {
			policy := s.policyResolver.GetPolicy(tenantID)

			queryResult, queryErr := s.store.Query(&logs_core.QueryParams{
				TenantID:       tenantID,
				Limit:          aggregateTenantLimit,
				SortDescending: true,
			})
			if queryErr != nil {
				s.logger.Warn("aggregate fetch failed for tenant",
					slog.String("tenantId", tenantID),
					slog.String("error", queryErr.Error()))
				results[i] = &LogAccessResponseDTO{
					TenantID:      tenantID,
					Logs:          []*logs_core.LogEntry{},
					ModuleEnabled: policy.Enabled,
					AccessType:    AccessTypeUniversal,
				}
				return nil
			}

			results[i] = &LogAccessResponseDTO{
				TenantID:      tenantID,
				Logs:          queryResult.Logs,
				ModuleEnabled: policy.Enabled,
				AccessType:    AccessTypeUniversal,
				TotalCount:    queryResult.Total,
			}
			return nil
		})
	}

	// Workers only report per-tenant outcomes, never errors
	_ = group.Wait()

	response := &AggregateResponseDTO{Tenants: results}
	for _, result := range results {
		response.Logs = append(response.Logs, result.Logs...)
		response.TotalCount += result.TotalCount
	}

	sort.SliceStable(response.Logs, func(i, j int) bool {
		return response.Logs[i].Timestamp.After(response.Logs[j].Timestamp)
	})

	s.auditTrail.Append(&AccessAuditEntry{
		ActorID:     actor.ID,
		ActorRole:   string(actor.Role),
		Operation:   "aggregate_all",
		Allowed:     true,
		ResultCount: response.TotalCount,
	})

	return response, nil
}

// GetAuditTrail exposes the access ring buffer to platform admins only.
func (s *GatewayService) GetAuditTrail(actor *actors.Actor, limit int) (*AuditTrailResponseDTO, error) {
	if !actor.Role.IsPlatformAdmin() {
		return nil, &logs_core.AccessError{
			Reason:  logs_core.AccessDeniedInsufficientPrivilege,
			Message: "audit trail requires a platform administrator",
		}
	}

	return &AuditTrailResponseDTO{
		Entries: s.auditTrail.Recent(limit),
		Total:   s.auditTrail.Size(),
	}, nil
}

func (s *GatewayService) fetch(
	actor *actors.Actor,
	tenantID string,
	options *GetLogsOptionsDTO,
	operation string,
) (*LogAccessResponseDTO, error) {
	policy, accessType, accessErr := s.ValidateAccess(actor, tenantID)
	if accessErr != nil {
		return nil, accessErr
	}

	if options == nil {
		options = &GetLogsOptionsDTO{}
	}

	params := &logs_core.QueryParams{
		TenantID:        tenantID,
		Levels:          options.Levels,
		MessageContains: options.MessageContains,
		UserID:          options.UserID,
		CorrelationID:   options.CorrelationID,
		From:            options.From,
		To:              options.To,
		Limit:           clampLimit(options.Limit),
		Offset:          max(options.Offset, 0),
		SortDescending:  true,
	}

	if accessType == AccessTypeRestricted {
		// Essential entries are the restricted baseline: they stay
		// readable no matter how the policy narrows the storage types.
		params.StorageTypes = restrictStorageTypes(policy, options.StorageTypes)
		params.IncludeEssential = true
	} else {
		params.StorageTypes = options.StorageTypes
	}

	queryResult, err := s.store.Query(params)
	if err != nil {
		s.logger.Error("gateway fetch failed",
			slog.String("tenantId", tenantID),
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("log store query failed: %w", err)
	}

	s.auditTrail.Append(&AccessAuditEntry{
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		TargetTenant: tenantID,
		Operation:    operation,
		Allowed:      true,
		ResultCount:  queryResult.Total,
	})

	return &LogAccessResponseDTO{
		TenantID:      tenantID,
		Logs:          queryResult.Logs,
		ModuleEnabled: policy.Enabled,
		AccessType:    accessType,
		TotalCount:    queryResult.Total,
	}, nil
}

func (s *GatewayService) exportLimiter(actorID string) *rate.Limiter {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()

	limiter, exists := s.exportLimiters[actorID]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(exportRefillInterval), exportBurst)
		s.exportLimiters[actorID] = limiter
	}

	return limiter
}

// restrictStorageTypes narrows the requested storage types to the
// categories the tenant's policy allows. Error and general logs are always
// readable; the feature-gated categories need their toggle on. Essential
// entries are exempt from the narrowing via QueryParams.IncludeEssential.
func restrictStorageTypes(
	policy *policies.ModulePolicy,
	requested []logs_core.StorageType,
) []logs_core.StorageType {
	allowed := []logs_core.StorageType{
		logs_core.StorageTypeError,
		logs_core.StorageTypeGeneral,
	}
	if policy.SecurityLogging {
		allowed = append(allowed, logs_core.StorageTypeSecurity)
	}
	if policy.PerformanceLogging {
		allowed = append(allowed, logs_core.StorageTypePerformance)
	}
	if policy.AuditLogging {
		allowed = append(allowed, logs_core.StorageTypeAudit)
	}

	if len(requested) == 0 {
		return allowed
	}

	var narrowed []logs_core.StorageType
	for _, storageType := range requested {
		for _, allowedType := range allowed {
			if storageType == allowedType {
				narrowed = append(narrowed, storageType)
				break
			}
		}
	}

	if narrowed == nil {
		// Nothing requested survives the policy; an impossible filter
		// keeps the response shape instead of silently widening it.
		// Essential entries still match through IncludeEssential.
		return []logs_core.StorageType{""}
	}

	return narrowed
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultFetchLimit
	}
	if limit > maxFetchLimit {
		return maxFetchLimit
	}
	return limit
}
