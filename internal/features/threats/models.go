package threats

import (
	"time"

	logs_core "logwarden/internal/features/logs/core"

	"github.com/google/uuid"
)

type Violation struct {
	ID          uuid.UUID          `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Type        ViolationType      `json:"type"`
	Severity    logs_core.Severity `json:"severity"`
	Description string             `json:"description"`
	TenantID    string             `json:"tenantId,omitempty"`
	UserID      string             `json:"userId,omitempty"`
	ClientIP    string             `json:"clientIp,omitempty"`
	Forensics   map[string]any     `json:"forensics,omitempty"`

	// SourceKey is the monitor tracking key the violation originated from,
	// used by the coordinated-attack analyzer. Not exposed over the wire.
	SourceKey string `json:"-"`
}

func newViolation(
	violationType ViolationType,
	severity logs_core.Severity,
	description string,
) *Violation {
	return &Violation{
		ID:          uuid.New(),
		Timestamp:   time.Now().UTC(),
		Type:        violationType,
		Severity:    severity,
		Description: description,
		Forensics:   make(map[string]any),
	}
}

type AdminAccessRequestDTO struct {
	ClientIP      string `json:"clientIp"      binding:"required"`
	Endpoint      string `json:"endpoint"      binding:"required"`
	Method        string `json:"method"`
	StatusCode    int    `json:"statusCode"    binding:"required"`
	UserID        string `json:"userId"`
	UserRole      string `json:"userRole"`
	UserAgent     string `json:"userAgent"`
	TenantID      string `json:"tenantId"`
	CorrelationID string `json:"correlationId"`
}

type CrossTenantOperationDTO struct {
	UserID         string `json:"userId"         binding:"required"`
	HomeTenantID   string `json:"homeTenantId"   binding:"required"`
	TargetTenantID string `json:"targetTenantId" binding:"required"`
	Operation      string `json:"operation"`
	ClientIP       string `json:"clientIp"`
	CorrelationID  string `json:"correlationId"`
}

type InfrastructureRequestDTO struct {
	ClientIP         string `json:"clientIp"  binding:"required"`
	Endpoint         string `json:"endpoint"  binding:"required"`
	Method           string `json:"method"`
	PayloadSizeBytes int64  `json:"payloadSizeBytes"`
	UserAgent        string `json:"userAgent"`
}

type DetectionResponseDTO struct {
	Violations []*Violation `json:"violations"`
}
