package audit_logs

import (
	"net/http"

	"logwarden/internal/features/actors"

	"github.com/gin-gonic/gin"
)

type AuditLogController struct {
	auditLogService *AuditLogService
}

func (c *AuditLogController) RegisterRoutes(router *gin.RouterGroup) {
	auditRoutes := router.Group("/audit-records")

	auditRoutes.GET("", c.GetRecords)
}

// GetRecords
// @Summary Get security audit records (platform admin only)
// @Description Retrieve the durable audit trail of high/critical security events
// @Tags audit-records
// @Produce json
// @Security BearerAuth
// @Param tenantId query string false "Filter by tenant"
// @Param limit query int false "Limit number of results" default(100)
// @Param offset query int false "Offset for pagination" default(0)
// @Param beforeDate query string false "Records created before this date (RFC3339)" format(date-time)
// @Success 200 {object} GetAuditRecordsResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /audit-records [get]
func (c *AuditLogController) GetRecords(ctx *gin.Context) {
	actor, isOk := actors.GetActorFromContext(ctx)
	if !isOk {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor in context"})
		return
	}

	request := &GetAuditRecordsRequest{}
	if err := ctx.ShouldBindQuery(request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.auditLogService.GetRecords(actor, request)
	if err != nil {
		if err.Error() == "only platform administrators can view security audit records" {
			ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit records"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
