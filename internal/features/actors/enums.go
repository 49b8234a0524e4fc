package actors

type ActorRole string

const (
	ActorRoleSuperAdmin    ActorRole = "super_admin"
	ActorRolePlatformAdmin ActorRole = "platform_admin"
	ActorRoleCompanyAdmin  ActorRole = "company_admin"
	ActorRoleHRManager     ActorRole = "hr_manager"
)

func (r ActorRole) IsValid() bool {
	switch r {
	case ActorRoleSuperAdmin, ActorRolePlatformAdmin, ActorRoleCompanyAdmin, ActorRoleHRManager:
		return true
	default:
		return false
	}
}

// IsPlatformAdmin reports whether the role has universal, policy-bypassing
// access across tenants.
func (r ActorRole) IsPlatformAdmin() bool {
	return r == ActorRoleSuperAdmin || r == ActorRolePlatformAdmin
}

// IsCompanyAdmin reports whether the role is restricted to its own tenant.
func (r ActorRole) IsCompanyAdmin() bool {
	return r == ActorRoleCompanyAdmin || r == ActorRoleHRManager
}
