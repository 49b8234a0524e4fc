package logs_pipeline

import (
	"testing"
	"time"

	logs_core "logwarden/internal/features/logs/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scannerEntry(message string) *logs_core.LogEntry {
	return &logs_core.LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     logs_core.LogLevelInfo,
		Message:   message,
		Source:    logs_core.LogSourceBackend,
		TenantID:  "acme",
		UserID:    "user-1",
	}
}

func Test_ScanCritical_MatchingMessage_OneEventPerPattern(t *testing.T) {
	scanner := NewSecurityScanner()

	events := scanner.ScanCritical(scannerEntry("Unauthorized Access attempt blocked"))

	require.Len(t, events, 1)
	assert.Equal(t, "critical_pattern", events[0].Type)
	assert.Equal(t, logs_core.SeverityCritical, events[0].Severity)
	assert.True(t, events[0].Essential)
	assert.Equal(t, "unauthorized access", events[0].Forensics["pattern"])
}

func Test_ScanCritical_CleanMessage_NoEvents(t *testing.T) {
	scanner := NewSecurityScanner()

	assert.Empty(t, scanner.ScanCritical(scannerEntry("nightly job finished")))
}

func Test_ScanDetailed_FrontendInjectionPattern_HighSeverityEvent(t *testing.T) {
	scanner := NewSecurityScanner()

	entry := scannerEntry("form value was javascript:alert(1)")
	entry.Source = logs_core.LogSourceFrontend

	events := scanner.ScanDetailed(entry)

	require.NotEmpty(t, events)
	assert.Equal(t, "suspicious_frontend_content", events[0].Type)
	assert.Equal(t, logs_core.SeverityHigh, events[0].Severity)
	assert.False(t, events[0].Essential)
}

func Test_ScanDetailed_Over50CallsPerMinute_ExcessiveCallsEvent(t *testing.T) {
	scanner := NewSecurityScanner()

	var flagged []*logs_core.SecurityEvent
	for i := 0; i < 51; i++ {
		flagged = scanner.ScanDetailed(scannerEntry("routine call"))
	}

	require.NotEmpty(t, flagged)
	assert.Equal(t, "excessive_api_calls", flagged[0].Type)
	assert.Equal(t, 51, flagged[0].Forensics["callsPerMinute"])
}

func Test_ScanDetailed_Over10ErrorsIn5Minutes_ErrorBurstEvent(t *testing.T) {
	scanner := NewSecurityScanner()

	var events []*logs_core.SecurityEvent
	for i := 0; i < 11; i++ {
		entry := scannerEntry("request handler crashed")
		entry.Level = logs_core.LogLevelError
		events = scanner.ScanDetailed(entry)
	}

	var burst *logs_core.SecurityEvent
	for _, event := range events {
		if event.Type == "error_burst" {
			burst = event
		}
	}

	require.NotNil(t, burst)
	assert.Equal(t, 11, burst.Forensics["errorsInWindow"])
}

func Test_ScanDetailed_DifferentUsers_WindowsIsolated(t *testing.T) {
	scanner := NewSecurityScanner()

	for i := 0; i < 50; i++ {
		scanner.ScanDetailed(scannerEntry("routine call"))
	}

	other := scannerEntry("routine call")
	other.UserID = "user-2"

	assert.Empty(t, scanner.ScanDetailed(other))
}

func Test_ContainsCriticalPattern_CaseInsensitive(t *testing.T) {
	assert.True(t, ContainsCriticalPattern("SECURITY BREACH in progress"))
	assert.False(t, ContainsCriticalPattern("routine deploy"))
}
