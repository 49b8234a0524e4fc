package gateway

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"logwarden/internal/features/actors"
	logs_core "logwarden/internal/features/logs/core"

	"github.com/gin-gonic/gin"
)

type GatewayController struct {
	gatewayService *GatewayService
}

func (c *GatewayController) RegisterRoutes(router *gin.RouterGroup) {
	gatewayRoutes := router.Group("/gateway")

	gatewayRoutes.GET("/tenants/:tenantId/logs", c.GetLogs)
	gatewayRoutes.POST("/tenants/:tenantId/logs/search", c.SearchLogs)
	gatewayRoutes.GET("/tenants/:tenantId/logs/export", c.ExportLogs)

	gatewayRoutes.GET("/aggregate", actors.RequirePlatformAdmin(), c.AggregateAllCompanyLogs)
	gatewayRoutes.GET("/audit-trail", actors.RequirePlatformAdmin(), c.GetAuditTrail)
}

// GetLogs
// @Summary Read a tenant's logs through the tiered gateway
// @Tags gateway
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param limit query int false "Max entries (default 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} LogAccessResponseDTO
// @Failure 401 {object} map[string]string
// @Failure 403 {object} logs_core.AccessError
// @Router /gateway/tenants/{tenantId}/logs [get]
func (c *GatewayController) GetLogs(ctx *gin.Context) {
	actor, isOk := actors.GetActorFromContext(ctx)
	if !isOk {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor in context"})
		return
	}

	response, err := c.gatewayService.GetLogs(actor, ctx.Param("tenantId"), optionsFromQuery(ctx))
	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// SearchLogs
// @Summary Search a tenant's logs by message content
// @Tags gateway
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param request body GetLogsOptionsDTO true "Search options"
// @Success 200 {object} LogAccessResponseDTO
// @Failure 400 {object} logs_core.ValidationError
// @Failure 403 {object} logs_core.AccessError
// @Router /gateway/tenants/{tenantId}/logs/search [post]
func (c *GatewayController) SearchLogs(ctx *gin.Context) {
	actor, isOk := actors.GetActorFromContext(ctx)
	if !isOk {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor in context"})
		return
	}

	var options GetLogsOptionsDTO
	if err := ctx.ShouldBindJSON(&options); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.gatewayService.SearchLogs(actor, ctx.Param("tenantId"), &options)
	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ExportLogs
// @Summary Export a tenant's logs as JSON or CSV
// @Tags gateway
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param format query string false "json or csv (default json)"
// @Success 200 {object} LogAccessResponseDTO
// @Failure 403 {object} logs_core.AccessError
// @Failure 429 {object} logs_core.ValidationError
// @Router /gateway/tenants/{tenantId}/logs/export [get]
func (c *GatewayController) ExportLogs(ctx *gin.Context) {
	actor, isOk := actors.GetActorFromContext(ctx)
	if !isOk {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor in context"})
		return
	}

	format := ExportFormat(ctx.DefaultQuery("format", string(ExportFormatJSON)))
	if !format.IsValid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported export format"})
		return
	}

	tenantID := ctx.Param("tenantId")

	response, err := c.gatewayService.ExportLogs(actor, tenantID, optionsFromQuery(ctx))
	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	if format == ExportFormatCSV {
		writeCSV(ctx, tenantID, response)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-logs.json", tenantID))
	ctx.JSON(http.StatusOK, response)
}

// AggregateAllCompanyLogs
// @Summary Merge recent logs of all tenants (platform admin only)
// @Tags gateway
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AggregateResponseDTO
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /gateway/aggregate [get]
func (c *GatewayController) AggregateAllCompanyLogs(ctx *gin.Context) {
	actor, isOk := actors.GetActorFromContext(ctx)
	if !isOk {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor in context"})
		return
	}

	response, err := c.gatewayService.AggregateAllCompanyLogs(actor)
	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetAuditTrail
// @Summary Read the gateway access audit trail (platform admin only)
// @Tags gateway
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries"
// @Success 200 {object} AuditTrailResponseDTO
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /gateway/audit-trail [get]
func (c *GatewayController) GetAuditTrail(ctx *gin.Context) {
	actor, isOk := actors.GetActorFromContext(ctx)
	if !isOk {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor in context"})
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

	response, err := c.gatewayService.GetAuditTrail(actor, limit)
	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func optionsFromQuery(ctx *gin.Context) *GetLogsOptionsDTO {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	options := &GetLogsOptionsDTO{
		MessageContains: ctx.Query("messageContains"),
		UserID:          ctx.Query("userId"),
		CorrelationID:   ctx.Query("correlationId"),
		Limit:           limit,
		Offset:          offset,
	}

	if level := ctx.Query("level"); level != "" {
		options.Levels = []logs_core.LogLevel{logs_core.LogLevel(level)}
	}
	if storageType := ctx.Query("storageType"); storageType != "" {
		options.StorageTypes = []logs_core.StorageType{logs_core.StorageType(storageType)}
	}

	return options
}

func writeCSV(ctx *gin.Context, tenantID string, response *LogAccessResponseDTO) {
	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-logs.csv", tenantID))

	writer := csv.NewWriter(ctx.Writer)
	defer writer.Flush()

	_ = writer.Write([]string{"timestamp", "level", "message", "source", "userId", "correlationId", "storageType"})
	for _, entry := range response.Logs {
		_ = writer.Write([]string{
			entry.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			string(entry.Level),
			entry.Message,
			string(entry.Source),
			entry.UserID,
			entry.CorrelationID,
			string(entry.StorageType),
		})
	}
}

func respondGatewayError(ctx *gin.Context, err error) {
	var accessErr *logs_core.AccessError
	if errors.As(err, &accessErr) {
		ctx.JSON(http.StatusForbidden, accessErr)
		return
	}

	var validationErr *logs_core.ValidationError
	if errors.As(err, &validationErr) {
		status := http.StatusBadRequest
		if validationErr.Code == logs_core.ErrorRateLimitExceeded {
			status = http.StatusTooManyRequests
		}
		ctx.JSON(status, validationErr)
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read logs"})
}
