package logs_pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/features/threats"

	"github.com/google/uuid"
)

const (
	apiCallThreshold = 50
	apiCallWindow    = time.Minute
	errorThreshold   = 10
	errorWindow      = 5 * time.Minute
)

// criticalPatterns is the fixed list behind the essential fast path. Matching
// any of these always produces a critical event, independent of tenant policy.
var criticalPatterns = []string{
	"unauthorized access",
	"security breach",
	"system compromise",
	"privilege escalation",
	"data exfiltration",
	"account takeover",
}

var sqlInjectionPattern = regexp.MustCompile(
	`(?i)(union\s+select|or\s+1\s*=\s*1|drop\s+table|;\s*--|xp_cmdshell)`,
)

// SecurityScanner runs the per-entry detection passes. The critical-pattern
// scan always runs; the heuristic scan is gated by the tenant's
// securityLogging flag.
type SecurityScanner struct {
	tracking *threats.TrackingStore
}

func NewSecurityScanner() *SecurityScanner {
	return &SecurityScanner{
		tracking: threats.NewTrackingStore(),
	}
}

func ContainsCriticalPattern(message string) bool {
	lowered := strings.ToLower(message)
	for _, pattern := range criticalPatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

// ScanCritical emits one critical, essential event per matched pattern.
func (s *SecurityScanner) ScanCritical(entry *logs_core.LogEntry) []*logs_core.SecurityEvent {
	lowered := strings.ToLower(entry.Message)

	var events []*logs_core.SecurityEvent
	for _, pattern := range criticalPatterns {
		if strings.Contains(lowered, pattern) {
			events = append(events, s.newEvent(entry,
				"critical_pattern",
				logs_core.SeverityCritical,
				fmt.Sprintf("log message matched critical pattern %q", pattern),
				true,
				map[string]any{"pattern": pattern},
			))
		}
	}

	return events
}

// ScanDetailed runs source-specific pattern analysis plus the rolling-window
// cross-system checks keyed by user.
func (s *SecurityScanner) ScanDetailed(entry *logs_core.LogEntry) []*logs_core.SecurityEvent {
	var events []*logs_core.SecurityEvent

	switch entry.Source {
	case logs_core.LogSourceFrontend:
		for _, pattern := range suspiciousContentPatterns {
			if pattern.MatchString(entry.Message) {
				events = append(events, s.newEvent(entry,
					"suspicious_frontend_content",
					logs_core.SeverityHigh,
					fmt.Sprintf("frontend log matched injection pattern %s", pattern.String()),
					false,
					map[string]any{"pattern": pattern.String()},
				))
			}
		}

	case logs_core.LogSourceBackend:
		if sqlInjectionPattern.MatchString(entry.Message) {
			events = append(events, s.newEvent(entry,
				"sql_injection_attempt",
				logs_core.SeverityHigh,
				"backend log matched SQL injection pattern",
				false,
				nil,
			))
		}
	}

	events = append(events, s.scanUserWindows(entry)...)

	return events
}

func (s *SecurityScanner) scanUserWindows(entry *logs_core.LogEntry) []*logs_core.SecurityEvent {
	if entry.UserID == "" {
		return nil
	}

	now := time.Now().UTC()
	key := entry.TenantID + "|" + entry.UserID

	var events []*logs_core.SecurityEvent

	s.tracking.Record(key, "api_call", now)
	callsLastMinute := s.tracking.CountSince(key, "api_call", now.Add(-apiCallWindow))
	if callsLastMinute > apiCallThreshold {
		events = append(events, s.newEvent(entry,
			"excessive_api_calls",
			logs_core.SeverityHigh,
			fmt.Sprintf("user %s produced %d calls in the last minute", entry.UserID, callsLastMinute),
			false,
			map[string]any{"callsPerMinute": callsLastMinute},
		))
	}

	if entry.Level == logs_core.LogLevelError {
		s.tracking.Record(key, "error", now)
		errorsInWindow := s.tracking.CountSince(key, "error", now.Add(-errorWindow))
		if errorsInWindow > errorThreshold {
			events = append(events, s.newEvent(entry,
				"error_burst",
				logs_core.SeverityHigh,
				fmt.Sprintf("user %s produced %d errors within %s", entry.UserID, errorsInWindow, errorWindow),
				false,
				map[string]any{"errorsInWindow": errorsInWindow},
			))
		}
	}

	return events
}

// PruneIdle drops user windows without activity since the cutoff.
func (s *SecurityScanner) PruneIdle(cutoff time.Time) int {
	return s.tracking.PruneIdle(cutoff)
}

func (s *SecurityScanner) newEvent(
	entry *logs_core.LogEntry,
	eventType string,
	severity logs_core.Severity,
	description string,
	essential bool,
	forensics map[string]any,
) *logs_core.SecurityEvent {
	return &logs_core.SecurityEvent{
		ID:            uuid.New(),
		Timestamp:     time.Now().UTC(),
		Type:          eventType,
		Severity:      severity,
		Description:   description,
		TenantID:      entry.TenantID,
		UserID:        entry.UserID,
		CorrelationID: entry.CorrelationID,
		Essential:     essential,
		Forensics:     forensics,
	}
}
