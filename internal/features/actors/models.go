package actors

// Actor is the authenticated principal extracted from a bearer token.
// Token issuance happens outside this service.
type Actor struct {
	ID       string    `json:"id"`
	Role     ActorRole `json:"role"`
	TenantID string    `json:"tenantId,omitempty"`
}
