package gateway

import (
	"time"

	logs_core "logwarden/internal/features/logs/core"
)

type GetLogsOptionsDTO struct {
	Levels          []logs_core.LogLevel     `json:"levels"`
	StorageTypes    []logs_core.StorageType  `json:"storageTypes"`
	MessageContains string                   `json:"messageContains"`
	UserID          string                   `json:"userId"`
	CorrelationID   string                   `json:"correlationId"`
	From            *time.Time               `json:"from"`
	To              *time.Time               `json:"to"`
	Limit           int                      `json:"limit"`
	Offset          int                      `json:"offset"`
}

type LogAccessResponseDTO struct {
	TenantID      string               `json:"tenantId"`
	Logs          []*logs_core.LogEntry `json:"logs"`
	ModuleEnabled bool                 `json:"moduleEnabled"`
	AccessType    AccessType           `json:"accessType"`
	TotalCount    int64                `json:"totalCount"`
}

type AggregateResponseDTO struct {
	Tenants    []*LogAccessResponseDTO `json:"tenants"`
	Logs       []*logs_core.LogEntry   `json:"logs"`
	TotalCount int64                   `json:"totalCount"`
}

type AuditTrailResponseDTO struct {
	Entries []*AccessAuditEntry `json:"entries"`
	Total   int                 `json:"total"`
}
