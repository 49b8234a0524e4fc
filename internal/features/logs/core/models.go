package logs_core

import (
	"time"

	"github.com/google/uuid"
)

type LogEntry struct {
	ID            uuid.UUID      `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Level         LogLevel       `json:"level"`
	Message       string         `json:"message"`
	Source        LogSource      `json:"source"`
	TenantID      string         `json:"tenantId"`
	UserID        string         `json:"userId,omitempty"`
	SessionID     string         `json:"sessionId,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
	Essential     bool           `json:"essential"`
	StorageType   StorageType    `json:"storageType,omitempty"`
	ClientIP      string         `json:"clientIp,omitempty"`
}

// SecurityEvent is a detector finding attached to a processed entry or a
// reported request. Essential events are persisted regardless of tenant policy.
type SecurityEvent struct {
	ID            uuid.UUID      `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Type          string         `json:"type"`
	Severity      Severity       `json:"severity"`
	Description   string         `json:"description"`
	TenantID      string         `json:"tenantId"`
	UserID        string         `json:"userId,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Essential     bool           `json:"essential"`
	Forensics     map[string]any `json:"forensics,omitempty"`
}
