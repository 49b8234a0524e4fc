package audit_logs

import (
	logs_ingestion "logwarden/internal/features/logs/ingestion"
	"logwarden/internal/features/policies"
	"logwarden/internal/features/threats"
	"logwarden/internal/util/logger"
)

var auditLogRepository = &AuditLogRepository{}
var auditLogService = &AuditLogService{
	auditLogRepository: auditLogRepository,
	logger:             logger.GetLogger(),
}
var auditLogController = &AuditLogController{
	auditLogService: auditLogService,
}

func GetAuditLogService() *AuditLogService {
	return auditLogService
}

func GetAuditLogController() *AuditLogController {
	return auditLogController
}

func SetupDependencies() {
	policies.GetPolicyService().SetAuditSink(auditLogService)
	threats.GetThreatDetectionEngine().SetAuditSink(auditLogService)
	logs_ingestion.GetSecurityEventWorker().SetAuditSink(auditLogService)
}
