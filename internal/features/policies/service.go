package policies

import (
	"fmt"
	"log/slog"
	"time"

	logs_core "logwarden/internal/features/logs/core"
	cache_utils "logwarden/internal/util/cache"

	"golang.org/x/sync/singleflight"
)

// AuditSink receives policy-administration events for the durable audit
// trail. Wired in SetupDependencies to avoid an import cycle.
type AuditSink interface {
	Record(tenantID, userID, eventType string, severity logs_core.Severity, message, correlationID string)
}

// PolicyService resolves per-tenant module policies with a 5-minute cache.
// singleflight keeps a cold tenant from stampeding the database.
type PolicyService struct {
	policyRepository *PolicyRepository
	policyCacheUtil  *cache_utils.CacheUtil[ModulePolicy]
	singleflight     singleflight.Group
	auditSink        AuditSink
	logger           *slog.Logger
}

const PolicyCacheExpiry = 5 * time.Minute

func (s *PolicyService) SetAuditSink(sink AuditSink) {
	s.auditSink = sink
}

// GetPolicy never fails: resolver errors degrade to the default policy so
// log processing is not blocked by the policy store.
func (s *PolicyService) GetPolicy(tenantID string) *ModulePolicy {
	if s.policyCacheUtil != nil {
		if cached := s.policyCacheUtil.Get(tenantID); cached != nil {
			return cached
		}
	}

	result, err, _ := s.singleflight.Do(tenantID, func() (any, error) {
		policy, err := s.policyRepository.GetByTenantID(tenantID)
		if err != nil {
			return nil, err
		}

		if policy == nil {
			policy = DefaultPolicy(tenantID)
		}

		if s.policyCacheUtil != nil {
			s.policyCacheUtil.Set(tenantID, policy)
		}

		return policy, nil
	})
	if err != nil {
		s.logger.Warn("Failed to resolve module policy, using defaults",
			slog.String("tenantId", tenantID),
			slog.String("error", err.Error()))
		return DefaultPolicy(tenantID)
	}

	return result.(*ModulePolicy)
}

func (s *PolicyService) UpdatePolicy(policy *ModulePolicy, updatedBy string) error {
	policy.UpdatedAt = time.Now().UTC()
	policy.UpdatedBy = updatedBy

	if err := s.policyRepository.Upsert(policy); err != nil {
		return fmt.Errorf("failed to update module policy: %w", err)
	}

	if s.policyCacheUtil != nil {
		s.policyCacheUtil.Invalidate(policy.TenantID)
	}

	if s.auditSink != nil {
		s.auditSink.Record(
			policy.TenantID,
			updatedBy,
			"policy_updated",
			logs_core.SeverityLow,
			fmt.Sprintf("module policy updated for tenant %s (enabled=%t)", policy.TenantID, policy.Enabled),
			"",
		)
	}

	return nil
}

func (s *PolicyService) ListTenantIDs() ([]string, error) {
	tenantIDs, err := s.policyRepository.ListTenantIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenantIDs, nil
}
