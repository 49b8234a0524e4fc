package threats

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	logs_core "logwarden/internal/features/logs/core"
)

const (
	ddosRequestThreshold   = 100
	ddosWindow             = time.Minute
	memoryUsageThreshold   = 85.0
	cpuUsageThreshold      = 90.0
	oversizedPayloadBytes  = 10 * 1024 * 1024
	probingThreshold       = 20
	probingWindow          = 5 * time.Minute
	infrastructureCooldown = 5 * time.Minute
	cooldownIdleRetention  = time.Hour
)

var sensitiveEndpointPattern = regexp.MustCompile(
	`(?i)(/\.env|/\.git|/wp-admin|/wp-login|/phpmyadmin|/config\.|/backup|/\.aws|/etc/passwd|/actuator)`,
)

// InfrastructureMonitor watches request-rate, payload-size, resource and
// endpoint-probing signals. Each (violation type, IP) pair is gated by a
// cooldown so a sustained flood produces one alert per window instead of
// one per request.
type InfrastructureMonitor struct {
	tracking *TrackingStore
	metrics  SystemMetricsProvider
	logger   *slog.Logger

	cooldownMu sync.Mutex
	cooldowns  map[string]time.Time
}

func (m *InfrastructureMonitor) Detect(request *InfrastructureRequestDTO) []*Violation {
	now := time.Now().UTC()

	var violations []*Violation

	m.tracking.Record(request.ClientIP, "request", now)
	requestsLastMinute := m.tracking.CountSince(request.ClientIP, "request", now.Add(-ddosWindow))
	if requestsLastMinute > ddosRequestThreshold && m.passCooldown(ViolationDDoSAttack, request.ClientIP, now) {
		violation := newViolation(
			ViolationDDoSAttack,
			logs_core.SeverityCritical,
			fmt.Sprintf("possible DDoS: %d requests from %s in the last minute",
				requestsLastMinute, request.ClientIP),
		)
		m.attachRequestContext(violation, request)
		violation.Forensics["requestsPerMinute"] = requestsLastMinute
		violations = append(violations, violation)
	}

	if resource := m.checkResources(request, now); resource != nil {
		violations = append(violations, resource)
	}

	if request.PayloadSizeBytes > oversizedPayloadBytes && m.passCooldown(ViolationOversizedPayload, request.ClientIP, now) {
		violation := newViolation(
			ViolationOversizedPayload,
			logs_core.SeverityMedium,
			fmt.Sprintf("oversized payload of %d bytes from %s on %s",
				request.PayloadSizeBytes, request.ClientIP, request.Endpoint),
		)
		m.attachRequestContext(violation, request)
		violation.Forensics["payloadSizeBytes"] = request.PayloadSizeBytes
		violations = append(violations, violation)
	}

	if sensitiveEndpointPattern.MatchString(request.Endpoint) {
		m.tracking.Record(request.ClientIP, "sensitive_probe", now)
		probes := m.tracking.CountSince(request.ClientIP, "sensitive_probe", now.Add(-probingWindow))
		if probes > probingThreshold && m.passCooldown(ViolationSensitiveEndpointProbing, request.ClientIP, now) {
			violation := newViolation(
				ViolationSensitiveEndpointProbing,
				logs_core.SeverityHigh,
				fmt.Sprintf("sensitive endpoint probing: %d hits from %s within %s",
					probes, request.ClientIP, probingWindow),
			)
			m.attachRequestContext(violation, request)
			violation.Forensics["probeCount"] = probes
			violations = append(violations, violation)
		}
	}

	return violations
}

func (m *InfrastructureMonitor) checkResources(request *InfrastructureRequestDTO, now time.Time) *Violation {
	memoryPercent, err := m.metrics.MemoryUsedPercent()
	if err != nil {
		m.logger.Warn("failed to read memory usage", slog.String("error", err.Error()))
		return nil
	}

	cpuPercent, err := m.metrics.CPUPercent()
	if err != nil {
		m.logger.Warn("failed to read cpu usage", slog.String("error", err.Error()))
		return nil
	}

	if memoryPercent <= memoryUsageThreshold && cpuPercent <= cpuUsageThreshold {
		return nil
	}

	if !m.passCooldown(ViolationResourceExhaustion, request.ClientIP, now) {
		return nil
	}

	violation := newViolation(
		ViolationResourceExhaustion,
		logs_core.SeverityHigh,
		fmt.Sprintf("resource exhaustion under load from %s: memory %.1f%%, cpu %.1f%%",
			request.ClientIP, memoryPercent, cpuPercent),
	)
	m.attachRequestContext(violation, request)
	violation.Forensics["memoryUsedPercent"] = memoryPercent
	violation.Forensics["cpuPercent"] = cpuPercent

	return violation
}

// passCooldown reports whether the (type, IP) pair is outside its cooldown
// and, when it is, starts a new one.
func (m *InfrastructureMonitor) passCooldown(violationType ViolationType, clientIP string, now time.Time) bool {
	m.cooldownMu.Lock()
	defer m.cooldownMu.Unlock()

	key := string(violationType) + "|" + clientIP
	lastFired, exists := m.cooldowns[key]
	if exists && now.Sub(lastFired) < infrastructureCooldown {
		return false
	}

	m.cooldowns[key] = now
	return true
}

// PruneCooldowns drops cooldown entries idle longer than an hour.
func (m *InfrastructureMonitor) PruneCooldowns(now time.Time) int {
	m.cooldownMu.Lock()
	defer m.cooldownMu.Unlock()

	removed := 0
	for key, lastFired := range m.cooldowns {
		if now.Sub(lastFired) > cooldownIdleRetention {
			delete(m.cooldowns, key)
			removed++
		}
	}

	return removed
}

func (m *InfrastructureMonitor) attachRequestContext(violation *Violation, request *InfrastructureRequestDTO) {
	violation.ClientIP = request.ClientIP
	violation.SourceKey = request.ClientIP
	violation.Forensics["endpoint"] = request.Endpoint
	violation.Forensics["method"] = request.Method
	if request.UserAgent != "" {
		violation.Forensics["userAgent"] = request.UserAgent
	}
}
