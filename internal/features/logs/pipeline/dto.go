package logs_pipeline

import (
	logs_core "logwarden/internal/features/logs/core"
)

// ProcessLogRequestDTO wraps one entry with the authenticated request
// context the isolation check runs against.
type ProcessLogRequestDTO struct {
	Entry           *logs_core.LogEntry
	RequestTenantID string
	ClientIP        string
}

type ProcessLogResultDTO struct {
	Success          bool                       `json:"success"`
	State            ProcessingState            `json:"state"`
	CorrelationID    string                     `json:"correlationId,omitempty"`
	SecurityEvents   []*logs_core.SecurityEvent `json:"securityEvents,omitempty"`
	StorageLocation  string                     `json:"storageLocation,omitempty"`
	ProcessingTimeMs int64                      `json:"processingTimeMs"`
	Warnings         []string                   `json:"warnings,omitempty"`
	Error            *logs_core.ValidationError `json:"error,omitempty"`
}

type PipelineStatsDTO struct {
	TotalProcessed         int64   `json:"totalProcessed"`
	SuccessfullyProcessed  int64   `json:"successfullyProcessed"`
	Failed                 int64   `json:"failed"`
	SecurityEventsDetected int64   `json:"securityEventsDetected"`
	CorrelationsCreated    int64   `json:"correlationsCreated"`
	SuccessRate            float64 `json:"successRate"`
}
