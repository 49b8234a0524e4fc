package policies

import (
	"net/http"

	"logwarden/internal/features/actors"

	"github.com/gin-gonic/gin"
)

type PolicyController struct {
	policyService *PolicyService
}

func (c *PolicyController) RegisterRoutes(router *gin.RouterGroup) {
	policyRoutes := router.Group("/policies")
	policyRoutes.Use(actors.RequirePlatformAdmin())

	policyRoutes.GET("/tenants", c.ListTenants)
	policyRoutes.GET("/tenants/:tenantId", c.GetPolicy)
	policyRoutes.PUT("/tenants/:tenantId", c.UpdatePolicy)
}

// GetPolicy
// @Summary Get a tenant's module policy (platform admin only)
// @Tags policies
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} ModulePolicy
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /policies/tenants/{tenantId} [get]
func (c *PolicyController) GetPolicy(ctx *gin.Context) {
	tenantID := ctx.Param("tenantId")

	ctx.JSON(http.StatusOK, c.policyService.GetPolicy(tenantID))
}

// UpdatePolicy
// @Summary Update a tenant's module policy (platform admin only)
// @Tags policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param request body UpdatePolicyRequestDTO true "Policy settings"
// @Success 200 {object} ModulePolicy
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /policies/tenants/{tenantId} [put]
func (c *PolicyController) UpdatePolicy(ctx *gin.Context) {
	actor, isOk := actors.GetActorFromContext(ctx)
	if !isOk {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor in context"})
		return
	}

	tenantID := ctx.Param("tenantId")

	var request UpdatePolicyRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	policy := &ModulePolicy{
		TenantID:             tenantID,
		Enabled:              request.Enabled,
		AuditLogging:         request.AuditLogging,
		SecurityLogging:      request.SecurityLogging,
		PerformanceLogging:   request.PerformanceLogging,
		UserActionLogging:    request.UserActionLogging,
		FrontendLogging:      request.FrontendLogging,
		DetailedErrorLogging: request.DetailedErrorLogging,
		RetentionDays:        request.RetentionDays,
		IngestRPSLimit:       request.IngestRPSLimit,
	}

	if err := c.policyService.UpdatePolicy(policy, actor.ID); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update policy"})
		return
	}

	ctx.JSON(http.StatusOK, policy)
}

// ListTenants
// @Summary List all known tenants (platform admin only)
// @Tags policies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListTenantsResponseDTO
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /policies/tenants [get]
func (c *PolicyController) ListTenants(ctx *gin.Context) {
	tenantIDs, err := c.policyService.ListTenantIDs()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tenants"})
		return
	}

	ctx.JSON(http.StatusOK, ListTenantsResponseDTO{TenantIDs: tenantIDs})
}
