package threats

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"logwarden/internal/features/actors"
	logs_core "logwarden/internal/features/logs/core"
)

const (
	bruteForceThreshold = 5
	bruteForceWindow    = 5 * time.Minute
)

var adminPathPrefixes = []string{
	"/admin",
	"/api/admin",
	"/api/v1/admin",
	"/superadmin",
}

var automationUserAgentPattern = regexp.MustCompile(
	`(?i)(bot|crawler|spider|curl|wget|python|scrapy|headless|automation|httpclient)`,
)

// AdminAccessMonitor watches requests against admin-prefixed endpoints,
// keyed by IP+endpoint.
type AdminAccessMonitor struct {
	tracking *TrackingStore
}

func (m *AdminAccessMonitor) Detect(request *AdminAccessRequestDTO) []*Violation {
	if !m.isAdminEndpoint(request.Endpoint) {
		return nil
	}

	now := time.Now().UTC()
	key := request.ClientIP + "|" + request.Endpoint

	var violations []*Violation

	if request.StatusCode == 401 || request.StatusCode == 403 {
		violation := newViolation(
			ViolationAdminAccessFailure,
			logs_core.SeverityHigh,
			fmt.Sprintf("failed admin access attempt on %s from %s (status %d)",
				request.Endpoint, request.ClientIP, request.StatusCode),
		)
		m.attachRequestContext(violation, request)
		violations = append(violations, violation)

		m.tracking.Record(key, "auth_failure", now)

		failuresInWindow := m.tracking.CountSince(key, "auth_failure", now.Add(-bruteForceWindow))
		if failuresInWindow >= bruteForceThreshold {
			bruteForce := newViolation(
				ViolationAdminBruteForce,
				logs_core.SeverityCritical,
				fmt.Sprintf("admin brute force: %d failed attempts on %s from %s within %s",
					failuresInWindow, request.Endpoint, request.ClientIP, bruteForceWindow),
			)
			m.attachRequestContext(bruteForce, request)
			bruteForce.Forensics["failuresInWindow"] = failuresInWindow
			violations = append(violations, bruteForce)
		}
	}

	if request.StatusCode >= 200 && request.StatusCode < 300 && !m.hasAdminRole(request.UserRole) {
		violation := newViolation(
			ViolationPrivilegeViolation,
			logs_core.SeverityCritical,
			fmt.Sprintf("admin endpoint %s answered 2xx for non-admin role %q (user %s)",
				request.Endpoint, request.UserRole, request.UserID),
		)
		m.attachRequestContext(violation, request)
		violations = append(violations, violation)
	}

	if request.UserAgent == "" || automationUserAgentPattern.MatchString(request.UserAgent) {
		violation := newViolation(
			ViolationSuspiciousUserAgent,
			logs_core.SeverityMedium,
			fmt.Sprintf("automation-like user agent %q on admin endpoint %s",
				request.UserAgent, request.Endpoint),
		)
		m.attachRequestContext(violation, request)
		violations = append(violations, violation)
	}

	return violations
}

func (m *AdminAccessMonitor) isAdminEndpoint(endpoint string) bool {
	for _, prefix := range adminPathPrefixes {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}

func (m *AdminAccessMonitor) hasAdminRole(role string) bool {
	actorRole := actors.ActorRole(role)
	return actorRole.IsPlatformAdmin() || actorRole.IsCompanyAdmin()
}

func (m *AdminAccessMonitor) attachRequestContext(violation *Violation, request *AdminAccessRequestDTO) {
	violation.TenantID = request.TenantID
	violation.UserID = request.UserID
	violation.ClientIP = request.ClientIP
	violation.SourceKey = request.ClientIP + "|" + request.Endpoint
	violation.Forensics["endpoint"] = request.Endpoint
	violation.Forensics["method"] = request.Method
	violation.Forensics["statusCode"] = request.StatusCode
	violation.Forensics["userAgent"] = request.UserAgent
	if request.CorrelationID != "" {
		violation.Forensics["correlationId"] = request.CorrelationID
	}
}
