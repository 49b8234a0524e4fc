package audit_logs

import (
	"time"

	"github.com/google/uuid"
)

// SecurityAuditRecord is the durable row written for every high or critical
// security event. Low/medium findings stay in the log store only.
type SecurityAuditRecord struct {
	ID            uuid.UUID `json:"id"            gorm:"column:id"`
	TenantID      string    `json:"tenantId"      gorm:"column:tenant_id"`
	UserID        string    `json:"userId"        gorm:"column:user_id"`
	EventType     string    `json:"eventType"     gorm:"column:event_type"`
	Severity      string    `json:"severity"      gorm:"column:severity"`
	Message       string    `json:"message"       gorm:"column:message"`
	CorrelationID string    `json:"correlationId" gorm:"column:correlation_id"`
	CreatedAt     time.Time `json:"createdAt"     gorm:"column:created_at"`
}

func (SecurityAuditRecord) TableName() string {
	return "security_audit_records"
}
