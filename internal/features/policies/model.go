package policies

import "time"

// ModulePolicy is the per-tenant feature-flag record controlling which
// non-essential logging categories are captured. It doubles as the tenant
// registry: a row here means the tenant is known to the platform.
type ModulePolicy struct {
	TenantID             string    `json:"tenantId"             gorm:"column:tenant_id;primaryKey"`
	Enabled              bool      `json:"enabled"              gorm:"column:enabled"`
	AuditLogging         bool      `json:"auditLogging"         gorm:"column:audit_logging"`
	SecurityLogging      bool      `json:"securityLogging"      gorm:"column:security_logging"`
	PerformanceLogging   bool      `json:"performanceLogging"   gorm:"column:performance_logging"`
	UserActionLogging    bool      `json:"userActionLogging"    gorm:"column:user_action_logging"`
	FrontendLogging      bool      `json:"frontendLogging"      gorm:"column:frontend_logging"`
	DetailedErrorLogging bool      `json:"detailedErrorLogging" gorm:"column:detailed_error_logging"`
	RetentionDays        int       `json:"retentionDays"        gorm:"column:retention_days"`
	IngestRPSLimit       int       `json:"ingestRpsLimit"       gorm:"column:ingest_rps_limit"`
	UpdatedAt            time.Time `json:"updatedAt"            gorm:"column:updated_at"`
	UpdatedBy            string    `json:"updatedBy"            gorm:"column:updated_by"`
}

func (ModulePolicy) TableName() string {
	return "module_policies"
}

// DefaultPolicy is the opt-out baseline applied to tenants without a stored
// row: module enabled with every category on.
func DefaultPolicy(tenantID string) *ModulePolicy {
	return &ModulePolicy{
		TenantID:             tenantID,
		Enabled:              true,
		AuditLogging:         true,
		SecurityLogging:      true,
		PerformanceLogging:   true,
		UserActionLogging:    true,
		FrontendLogging:      true,
		DetailedErrorLogging: true,
		RetentionDays:        90,
		IngestRPSLimit:       0, // unlimited
	}
}
