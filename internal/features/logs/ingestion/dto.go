package logs_ingestion

import (
	logs_pipeline "logwarden/internal/features/logs/pipeline"
)

// IngestLogItemDTO is the wire shape producers send. Timestamp is
// deliberately loose: ISO strings and unix seconds/milliseconds are all
// accepted.
type IngestLogItemDTO struct {
	Timestamp     any            `json:"timestamp"`
	Level         string         `json:"level"`
	Message       string         `json:"message"`
	Source        string         `json:"source"`
	UserID        string         `json:"userId"`
	SessionID     string         `json:"sessionId"`
	CorrelationID string         `json:"correlationId"`
	Meta          map[string]any `json:"meta"`
}

type IngestBatchRequestDTO struct {
	Logs []IngestLogItemDTO `json:"logs" binding:"required"`
}

type IngestBatchResponseDTO struct {
	Accepted int                                  `json:"accepted"`
	Rejected int                                  `json:"rejected"`
	Results  []*logs_pipeline.ProcessLogResultDTO `json:"results"`
}
