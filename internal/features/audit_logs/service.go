package audit_logs

import (
	"errors"
	"log/slog"
	"time"

	"logwarden/internal/features/actors"
	logs_core "logwarden/internal/features/logs/core"
)

type AuditLogService struct {
	auditLogRepository *AuditLogRepository
	logger             *slog.Logger
}

// Record persists a security event to the audit table. Write failures are
// logged and swallowed so a broken audit sink cannot block detection paths.
func (s *AuditLogService) Record(
	tenantID, userID, eventType string,
	severity logs_core.Severity,
	message, correlationID string,
) {
	record := &SecurityAuditRecord{
		TenantID:      tenantID,
		UserID:        userID,
		EventType:     eventType,
		Severity:      string(severity),
		Message:       message,
		CorrelationID: correlationID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.auditLogRepository.Create(record); err != nil {
		s.logger.Error("failed to create security audit record",
			slog.String("tenantId", tenantID),
			slog.String("eventType", eventType),
			slog.String("error", err.Error()))
	}
}

func (s *AuditLogService) GetRecords(
	actor *actors.Actor,
	request *GetAuditRecordsRequest,
) (*GetAuditRecordsResponse, error) {
	if !actor.Role.IsPlatformAdmin() {
		return nil, errors.New("only platform administrators can view security audit records")
	}

	limit := request.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	offset := max(request.Offset, 0)

	records, err := s.auditLogRepository.GetRecent(request.TenantID, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	total, err := s.auditLogRepository.Count(request.TenantID, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	return &GetAuditRecordsResponse{
		Records: records,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}
