package audit_logs

import (
	"time"

	"logwarden/internal/storage"

	"github.com/google/uuid"
)

type AuditLogRepository struct{}

func (r *AuditLogRepository) Create(record *SecurityAuditRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	return storage.GetDb().Create(record).Error
}

func (r *AuditLogRepository) GetRecent(
	tenantID string,
	limit, offset int,
	beforeDate *time.Time,
) ([]*SecurityAuditRecord, error) {
	records := make([]*SecurityAuditRecord, 0)

	query := storage.GetDb().Model(&SecurityAuditRecord{})

	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	if beforeDate != nil {
		query = query.Where("created_at < ?", *beforeDate)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error

	return records, err
}

func (r *AuditLogRepository) Count(tenantID string, beforeDate *time.Time) (int64, error) {
	var count int64

	query := storage.GetDb().Model(&SecurityAuditRecord{})

	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	if beforeDate != nil {
		query = query.Where("created_at < ?", *beforeDate)
	}

	err := query.Count(&count).Error
	return count, err
}
