package policies

type UpdatePolicyRequestDTO struct {
	Enabled              bool `json:"enabled"`
	AuditLogging         bool `json:"auditLogging"`
	SecurityLogging      bool `json:"securityLogging"`
	PerformanceLogging   bool `json:"performanceLogging"`
	UserActionLogging    bool `json:"userActionLogging"`
	FrontendLogging      bool `json:"frontendLogging"`
	DetailedErrorLogging bool `json:"detailedErrorLogging"`
	RetentionDays        int  `json:"retentionDays"        binding:"min=0,max=3650"`
	IngestRPSLimit       int  `json:"ingestRpsLimit"       binding:"min=0"`
}

type ListTenantsResponseDTO struct {
	TenantIDs []string `json:"tenantIds"`
}
