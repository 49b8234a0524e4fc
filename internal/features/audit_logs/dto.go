package audit_logs

import "time"

type GetAuditRecordsRequest struct {
	TenantID   string     `form:"tenantId"   json:"tenantId"`
	Limit      int        `form:"limit"      json:"limit"`
	Offset     int        `form:"offset"     json:"offset"`
	BeforeDate *time.Time `form:"beforeDate" json:"beforeDate"`
}

type GetAuditRecordsResponse struct {
	Records []*SecurityAuditRecord `json:"records"`
	Total   int64                  `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}
