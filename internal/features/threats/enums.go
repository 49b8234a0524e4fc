package threats

type ViolationType string

const (
	// Admin-access monitor
	ViolationAdminAccessFailure  ViolationType = "admin_access_failure"
	ViolationAdminBruteForce     ViolationType = "admin_brute_force"
	ViolationPrivilegeViolation  ViolationType = "privilege_violation"
	ViolationSuspiciousUserAgent ViolationType = "suspicious_user_agent"

	// Cross-tenant monitor
	ViolationTenantBoundaryBreach ViolationType = "tenant_boundary_breach"
	ViolationSystematicPattern    ViolationType = "systematic_pattern"
	ViolationDataHarvesting       ViolationType = "data_harvesting"

	// Infrastructure monitor
	ViolationDDoSAttack               ViolationType = "ddos_attack"
	ViolationResourceExhaustion       ViolationType = "resource_exhaustion"
	ViolationOversizedPayload         ViolationType = "oversized_payload"
	ViolationSensitiveEndpointProbing ViolationType = "sensitive_endpoint_probing"

	// Coordinated-attack analyzer
	ViolationCoordinatedAttack ViolationType = "coordinated_attack"
)
