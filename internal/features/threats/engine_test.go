package threats

import (
	"sync"
	"testing"

	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/util/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingAuditSink struct {
	mu      sync.Mutex
	entries []string
}

func (s *capturingAuditSink) Record(
	tenantID, userID, eventType string,
	severity logs_core.Severity,
	message, correlationID string,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, eventType)
}

func (s *capturingAuditSink) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

func newTestEngine() *ThreatDetectionEngine {
	return NewThreatDetectionEngine(
		&stubMetricsProvider{memoryPercent: 40, cpuPercent: 30},
		logger.GetLogger(),
	)
}

func Test_EvaluateAdminAccess_HighSeverity_ForwardedToAuditSink(t *testing.T) {
	engine := newTestEngine()
	sink := &capturingAuditSink{}
	engine.SetAuditSink(sink)

	request := adminRequest(403)
	engine.EvaluateAdminAccess(request)

	assert.Contains(t, sink.recorded(), string(ViolationAdminAccessFailure))
}

func Test_EvaluateAdminAccess_MediumSeverity_NotForwardedToAuditSink(t *testing.T) {
	engine := newTestEngine()
	sink := &capturingAuditSink{}
	engine.SetAuditSink(sink)

	request := adminRequest(200)
	request.UserAgent = "curl/8.4.0"

	violations := engine.EvaluateAdminAccess(request)

	require.Contains(t, violationTypes(violations), ViolationSuspiciousUserAgent)
	assert.Empty(t, sink.recorded())
}

func Test_EvaluateCrossTenant_NoSink_DoesNotPanic(t *testing.T) {
	engine := newTestEngine()

	violations := engine.EvaluateCrossTenant(crossTenantOperation("beta"))

	require.NotEmpty(t, violations)
	assert.Equal(t, len(violations), engine.RecentViolationCount())
}

func Test_AnalyzeCoordinatedAttacks_QuietHour_ReturnsNil(t *testing.T) {
	engine := newTestEngine()

	assert.Nil(t, engine.AnalyzeCoordinatedAttacks())
}

func Test_AnalyzeCoordinatedAttacks_SingleSource_ReturnsNil(t *testing.T) {
	engine := newTestEngine()

	// Many violations but a single violating key and user
	for i := 0; i < 10; i++ {
		engine.EvaluateCrossTenant(crossTenantOperation("beta"))
	}

	assert.Nil(t, engine.AnalyzeCoordinatedAttacks())
}

func reportThreeViolatingSources(engine *ThreatDetectionEngine) {
	engine.EvaluateCrossTenant(crossTenantOperation("beta"))

	privilege := adminRequest(200)
	privilege.ClientIP = "10.0.0.2"
	privilege.UserID = "user-2"
	privilege.UserRole = "viewer"
	engine.EvaluateAdminAccess(privilege)

	failure := adminRequest(401)
	failure.ClientIP = "10.0.0.3"
	failure.UserID = "user-3"
	engine.EvaluateAdminAccess(failure)
}

func Test_AnalyzeCoordinatedAttacks_ThreeSourcesAndThreeUsers_ReportsAttack(t *testing.T) {
	engine := newTestEngine()

	reportThreeViolatingSources(engine)

	violation := engine.AnalyzeCoordinatedAttacks()

	require.NotNil(t, violation)
	assert.Equal(t, ViolationCoordinatedAttack, violation.Type)
	assert.Equal(t, logs_core.SeverityCritical, violation.Severity)
	assert.Equal(t, 3, violation.Forensics["violatingSources"])
	assert.Equal(t, 3, violation.Forensics["actingUsers"])
}

func Test_AnalyzeCoordinatedAttacks_ThreeSourcesButSingleActor_ReturnsNil(t *testing.T) {
	engine := newTestEngine()

	// Three distinct keys but everything comes from one user and one tenant
	engine.EvaluateCrossTenant(crossTenantOperation("beta"))

	privilege := adminRequest(200)
	privilege.ClientIP = "10.0.0.2"
	privilege.UserRole = "viewer"
	engine.EvaluateAdminAccess(privilege)

	failure := adminRequest(401)
	failure.ClientIP = "10.0.0.3"
	engine.EvaluateAdminAccess(failure)

	assert.Nil(t, engine.AnalyzeCoordinatedAttacks())
}

func Test_AnalyzeCoordinatedAttacks_AttackViolation_ForwardedToAuditSink(t *testing.T) {
	engine := newTestEngine()
	sink := &capturingAuditSink{}
	engine.SetAuditSink(sink)

	reportThreeViolatingSources(engine)

	require.NotNil(t, engine.AnalyzeCoordinatedAttacks())
	assert.Contains(t, sink.recorded(), string(ViolationCoordinatedAttack))
}

func Test_Cleanup_NoState_DoesNotPanic(t *testing.T) {
	engine := newTestEngine()

	engine.Cleanup()

	assert.Equal(t, 0, engine.adminMonitor.tracking.WindowCount())
}
