package gateway

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"logwarden/internal/features/actors"
	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/features/policies"
	"logwarden/internal/util/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPolicyResolver struct {
	policies map[string]*policies.ModulePolicy
	tenants  []string
	listErr  error
}

func (r *stubPolicyResolver) GetPolicy(tenantID string) *policies.ModulePolicy {
	if policy, ok := r.policies[tenantID]; ok {
		return policy
	}
	return policies.DefaultPolicy(tenantID)
}

func (r *stubPolicyResolver) ListTenantIDs() ([]string, error) {
	return r.tenants, r.listErr
}

type gatewayFixture struct {
	service  *GatewayService
	store    *logs_core.MemoryLogStore
	resolver *stubPolicyResolver
}

func newGatewayFixture() *gatewayFixture {
	store := logs_core.NewMemoryLogStore()
	resolver := &stubPolicyResolver{policies: make(map[string]*policies.ModulePolicy)}

	return &gatewayFixture{
		service:  NewGatewayService(resolver, resolver, store, logger.GetLogger()),
		store:    store,
		resolver: resolver,
	}
}

func (f *gatewayFixture) seedLogs(tenantID string, count int) {
	base := time.Now().UTC()
	for i := 0; i < count; i++ {
		_, _ = f.store.Store(&logs_core.LogEntry{
			ID:        uuid.New(),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Level:     logs_core.LogLevelInfo,
			Message:   fmt.Sprintf("event %d", i),
			Source:    logs_core.LogSourceBackend,
			TenantID:  tenantID,
			UserID:    "user-1",
		}, &logs_core.StoreOptions{StorageType: logs_core.StorageTypeGeneral})
	}
}

func platformAdmin() *actors.Actor {
	return &actors.Actor{ID: "admin-1", Role: actors.ActorRolePlatformAdmin}
}

func companyAdmin(tenantID string) *actors.Actor {
	return &actors.Actor{ID: "manager-1", Role: actors.ActorRoleCompanyAdmin, TenantID: tenantID}
}

func Test_ValidateAccess_PlatformAdmin_UniversalEvenWhenModuleDisabled(t *testing.T) {
	fixture := newGatewayFixture()

	disabled := policies.DefaultPolicy("acme")
	disabled.Enabled = false
	fixture.resolver.policies["acme"] = disabled

	policy, accessType, accessErr := fixture.service.ValidateAccess(platformAdmin(), "acme")

	require.Nil(t, accessErr)
	assert.Equal(t, AccessTypeUniversal, accessType)
	assert.False(t, policy.Enabled)
}

func Test_ValidateAccess_CompanyAdminOwnTenant_Restricted(t *testing.T) {
	fixture := newGatewayFixture()

	_, accessType, accessErr := fixture.service.ValidateAccess(companyAdmin("acme"), "acme")

	require.Nil(t, accessErr)
	assert.Equal(t, AccessTypeRestricted, accessType)
}

func Test_ValidateAccess_CompanyAdminOtherTenant_CrossTenantReasonNamesTarget(t *testing.T) {
	fixture := newGatewayFixture()

	_, _, accessErr := fixture.service.ValidateAccess(companyAdmin("acme"), "beta")

	require.NotNil(t, accessErr)
	assert.Equal(t, logs_core.AccessDeniedCrossTenant, accessErr.Reason)
	assert.Contains(t, accessErr.Message, "beta")
	assert.Contains(t, accessErr.Message, "acme")
}

func Test_ValidateAccess_CompanyAdminModuleDisabled_DistinctReason(t *testing.T) {
	fixture := newGatewayFixture()

	disabled := policies.DefaultPolicy("acme")
	disabled.Enabled = false
	fixture.resolver.policies["acme"] = disabled

	_, _, accessErr := fixture.service.ValidateAccess(companyAdmin("acme"), "acme")

	require.NotNil(t, accessErr)
	assert.Equal(t, logs_core.AccessDeniedModuleDisabled, accessErr.Reason)
}

func Test_ValidateAccess_UnprivilegedRole_InsufficientPrivilege(t *testing.T) {
	fixture := newGatewayFixture()

	viewer := &actors.Actor{ID: "user-9", Role: "viewer", TenantID: "acme"}

	_, _, accessErr := fixture.service.ValidateAccess(viewer, "acme")

	require.NotNil(t, accessErr)
	assert.Equal(t, logs_core.AccessDeniedInsufficientPrivilege, accessErr.Reason)
}

func Test_ValidateAccess_EveryDecision_Audited(t *testing.T) {
	fixture := newGatewayFixture()

	fixture.service.ValidateAccess(platformAdmin(), "acme")
	fixture.service.ValidateAccess(companyAdmin("acme"), "beta")

	trail, err := fixture.service.GetAuditTrail(platformAdmin(), 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, trail.Total, 2)
}

func Test_GetLogs_AccessDenied_ExplicitErrorNotEmptyResult(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.seedLogs("beta", 3)

	response, err := fixture.service.GetLogs(companyAdmin("acme"), "beta", nil)

	require.Error(t, err)
	assert.Nil(t, response)

	var accessErr *logs_core.AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, logs_core.AccessDeniedCrossTenant, accessErr.Reason)
}

func Test_GetLogs_PlatformAdmin_ReadsAnyTenant(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.seedLogs("acme", 5)

	response, err := fixture.service.GetLogs(platformAdmin(), "acme", nil)

	require.NoError(t, err)
	assert.Equal(t, AccessTypeUniversal, response.AccessType)
	assert.Len(t, response.Logs, 5)
	assert.Equal(t, int64(5), response.TotalCount)
}

func Test_GetLogs_ResultsSortedNewestFirst(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.seedLogs("acme", 5)

	response, err := fixture.service.GetLogs(platformAdmin(), "acme", nil)

	require.NoError(t, err)
	for i := 1; i < len(response.Logs); i++ {
		assert.False(t, response.Logs[i-1].Timestamp.Before(response.Logs[i].Timestamp))
	}
}

func Test_SearchLogs_WithoutFilter_Rejected(t *testing.T) {
	fixture := newGatewayFixture()

	_, err := fixture.service.SearchLogs(platformAdmin(), "acme", &GetLogsOptionsDTO{})

	require.Error(t, err)

	var validationErr *logs_core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, logs_core.ErrorMissingField, validationErr.Code)
}

func Test_SearchLogs_MessageFilter_Applied(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.seedLogs("acme", 5)

	response, err := fixture.service.SearchLogs(platformAdmin(), "acme",
		&GetLogsOptionsDTO{MessageContains: "event 3"})

	require.NoError(t, err)
	require.Len(t, response.Logs, 1)
	assert.Equal(t, "event 3", response.Logs[0].Message)
}

func Test_ExportLogs_OverBurst_RateLimited(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.seedLogs("acme", 1)

	actor := platformAdmin()

	for i := 0; i < 3; i++ {
		_, err := fixture.service.ExportLogs(actor, "acme", nil)
		require.NoError(t, err, "export %d should pass within burst", i+1)
	}

	_, err := fixture.service.ExportLogs(actor, "acme", nil)

	require.Error(t, err)
	var validationErr *logs_core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, logs_core.ErrorRateLimitExceeded, validationErr.Code)
}

func Test_ExportLogs_ThrottlePerActor_NotGlobal(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.seedLogs("acme", 1)

	exhausted := platformAdmin()
	for i := 0; i < 3; i++ {
		_, _ = fixture.service.ExportLogs(exhausted, "acme", nil)
	}

	other := &actors.Actor{ID: "admin-2", Role: actors.ActorRolePlatformAdmin}
	_, err := fixture.service.ExportLogs(other, "acme", nil)

	assert.NoError(t, err)
}

func Test_AggregateAllCompanyLogs_CompanyAdmin_Denied(t *testing.T) {
	fixture := newGatewayFixture()

	_, err := fixture.service.AggregateAllCompanyLogs(companyAdmin("acme"))

	require.Error(t, err)
	var accessErr *logs_core.AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, logs_core.AccessDeniedInsufficientPrivilege, accessErr.Reason)
}

func Test_AggregateAllCompanyLogs_FailingTenant_EmptyEntryOthersSurvive(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.resolver.tenants = []string{"acme", "beta", "gamma"}
	fixture.seedLogs("acme", 2)
	fixture.seedLogs("gamma", 3)
	fixture.store.FailTenant("beta")

	response, err := fixture.service.AggregateAllCompanyLogs(platformAdmin())

	require.NoError(t, err)
	require.Len(t, response.Tenants, 3)

	byTenant := make(map[string]*LogAccessResponseDTO)
	for _, result := range response.Tenants {
		byTenant[result.TenantID] = result
	}

	assert.Len(t, byTenant["acme"].Logs, 2)
	assert.Empty(t, byTenant["beta"].Logs)
	assert.Len(t, byTenant["gamma"].Logs, 3)
	assert.Equal(t, int64(5), response.TotalCount)
}

func Test_AggregateAllCompanyLogs_MergedViewSortedDescending(t *testing.T) {
	fixture := newGatewayFixture()
	fixture.resolver.tenants = []string{"acme", "beta"}
	fixture.seedLogs("acme", 3)
	fixture.seedLogs("beta", 3)

	response, err := fixture.service.AggregateAllCompanyLogs(platformAdmin())

	require.NoError(t, err)
	require.Len(t, response.Logs, 6)
	for i := 1; i < len(response.Logs); i++ {
		assert.False(t, response.Logs[i-1].Timestamp.Before(response.Logs[i].Timestamp))
	}
}

func Test_GetAuditTrail_CompanyAdmin_Denied(t *testing.T) {
	fixture := newGatewayFixture()

	_, err := fixture.service.GetAuditTrail(companyAdmin("acme"), 10)

	require.Error(t, err)
}

func (f *gatewayFixture) seedSecurityLog(tenantID, message string, essential bool) {
	_, _ = f.store.Store(&logs_core.LogEntry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Level:     logs_core.LogLevelError,
		Message:   message,
		Source:    logs_core.LogSourceBackend,
		TenantID:  tenantID,
		UserID:    "user-1",
	}, &logs_core.StoreOptions{
		StorageType: logs_core.StorageTypeSecurity,
		Essential:   essential,
	})
}

func Test_GetLogs_RestrictedFetch_EssentialEntryVisibleWhenSecurityToggleOff(t *testing.T) {
	fixture := newGatewayFixture()

	policy := policies.DefaultPolicy("acme")
	policy.SecurityLogging = false
	fixture.resolver.policies["acme"] = policy

	fixture.seedSecurityLog("acme", "security breach in payment flow", true)
	fixture.seedSecurityLog("acme", "heuristic scan finding", false)

	response, err := fixture.service.GetLogs(companyAdmin("acme"), "acme", nil)

	require.NoError(t, err)
	require.Len(t, response.Logs, 1)
	assert.Equal(t, "security breach in payment flow", response.Logs[0].Message)
}

func Test_GetLogs_RequestedTypeOutsidePolicy_EssentialEntriesStillReturned(t *testing.T) {
	fixture := newGatewayFixture()

	policy := policies.DefaultPolicy("acme")
	policy.SecurityLogging = false
	fixture.resolver.policies["acme"] = policy

	fixture.seedSecurityLog("acme", "security breach in payment flow", true)
	fixture.seedSecurityLog("acme", "heuristic scan finding", false)

	response, err := fixture.service.GetLogs(companyAdmin("acme"), "acme",
		&GetLogsOptionsDTO{StorageTypes: []logs_core.StorageType{logs_core.StorageTypeSecurity}})

	require.NoError(t, err)
	require.Len(t, response.Logs, 1)
	assert.True(t, response.Logs[0].Essential)
}

func Test_RestrictStorageTypes_TogglesNarrowTheFilter(t *testing.T) {
	policy := policies.DefaultPolicy("acme")
	policy.SecurityLogging = false
	policy.PerformanceLogging = false

	allowed := restrictStorageTypes(policy, nil)

	assert.Contains(t, allowed, logs_core.StorageTypeError)
	assert.Contains(t, allowed, logs_core.StorageTypeGeneral)
	assert.Contains(t, allowed, logs_core.StorageTypeAudit)
	assert.NotContains(t, allowed, logs_core.StorageTypeSecurity)
	assert.NotContains(t, allowed, logs_core.StorageTypePerformance)
}

func Test_RestrictStorageTypes_RequestedOutsidePolicy_ImpossibleFilter(t *testing.T) {
	policy := policies.DefaultPolicy("acme")
	policy.SecurityLogging = false

	narrowed := restrictStorageTypes(policy, []logs_core.StorageType{logs_core.StorageTypeSecurity})

	require.Len(t, narrowed, 1)
	assert.Equal(t, logs_core.StorageType(""), narrowed[0])
}
