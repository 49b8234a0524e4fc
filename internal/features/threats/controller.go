package threats

import (
	"net/http"

	"logwarden/internal/features/actors"

	"github.com/gin-gonic/gin"
)

type ThreatController struct {
	engine *ThreatDetectionEngine
}

func (c *ThreatController) RegisterRoutes(router *gin.RouterGroup) {
	threatRoutes := router.Group("/threats")

	threatRoutes.POST("/admin-access", c.ReportAdminAccess)
	threatRoutes.POST("/cross-tenant", c.ReportCrossTenant)
	threatRoutes.POST("/infrastructure", c.ReportInfrastructure)

	threatRoutes.POST("/analyze", actors.RequirePlatformAdmin(), c.RunCoordinatedAnalysis)
}

// ReportAdminAccess
// @Summary Evaluate an admin endpoint request for access violations
// @Tags threats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdminAccessRequestDTO true "Request details"
// @Success 200 {object} DetectionResponseDTO
// @Failure 400 {object} map[string]string
// @Router /threats/admin-access [post]
func (c *ThreatController) ReportAdminAccess(ctx *gin.Context) {
	var request AdminAccessRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	violations := c.engine.EvaluateAdminAccess(&request)

	ctx.JSON(http.StatusOK, DetectionResponseDTO{Violations: violations})
}

// ReportCrossTenant
// @Summary Evaluate a cross-tenant operation for boundary violations
// @Tags threats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CrossTenantOperationDTO true "Operation details"
// @Success 200 {object} DetectionResponseDTO
// @Failure 400 {object} map[string]string
// @Router /threats/cross-tenant [post]
func (c *ThreatController) ReportCrossTenant(ctx *gin.Context) {
	var operation CrossTenantOperationDTO
	if err := ctx.ShouldBindJSON(&operation); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	violations := c.engine.EvaluateCrossTenant(&operation)

	ctx.JSON(http.StatusOK, DetectionResponseDTO{Violations: violations})
}

// ReportInfrastructure
// @Summary Evaluate an infrastructure-level request signal
// @Tags threats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InfrastructureRequestDTO true "Request details"
// @Success 200 {object} DetectionResponseDTO
// @Failure 400 {object} map[string]string
// @Router /threats/infrastructure [post]
func (c *ThreatController) ReportInfrastructure(ctx *gin.Context) {
	var request InfrastructureRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	violations := c.engine.EvaluateInfrastructure(&request)

	ctx.JSON(http.StatusOK, DetectionResponseDTO{Violations: violations})
}

// RunCoordinatedAnalysis
// @Summary Run the coordinated-attack analysis on demand (platform admin only)
// @Tags threats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DetectionResponseDTO
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /threats/analyze [post]
func (c *ThreatController) RunCoordinatedAnalysis(ctx *gin.Context) {
	var violations []*Violation
	if violation := c.engine.AnalyzeCoordinatedAttacks(); violation != nil {
		violations = append(violations, violation)
	}

	ctx.JSON(http.StatusOK, DetectionResponseDTO{Violations: violations})
}
