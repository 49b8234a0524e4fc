package logs_ingestion

import (
	"log/slog"
	"net/http"
	"strconv"

	"logwarden/internal/features/actors"
	logs_core "logwarden/internal/features/logs/core"
	logs_pipeline "logwarden/internal/features/logs/pipeline"
	"logwarden/internal/features/policies"
	"logwarden/internal/util/rate_limit"
	time_parser "logwarden/internal/util/time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxBatchSize         = 1000
	maxBatchPayloadBytes = 10 * 1024 * 1024
)

type IngestController struct {
	pipelineService *logs_pipeline.PipelineService
	policyService   *policies.PolicyService
	rateLimiter     *rate_limit.RateLimiter
	logger          *slog.Logger
}

func (c *IngestController) RegisterRoutes(router *gin.RouterGroup) {
	logRoutes := router.Group("/logs")

	logRoutes.POST("/ingest/:tenantId", c.IngestLog)
	logRoutes.POST("/ingest/:tenantId/batch", c.IngestBatch)
	logRoutes.GET("/stats", actors.RequirePlatformAdmin(), c.GetStats)
}

// IngestLog
// @Summary Ingest one log entry for a tenant
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param request body IngestLogItemDTO true "Log entry"
// @Success 200 {object} logs_pipeline.ProcessLogResultDTO
// @Failure 400 {object} logs_pipeline.ProcessLogResultDTO
// @Failure 429 {object} map[string]string
// @Router /logs/ingest/{tenantId} [post]
func (c *IngestController) IngestLog(ctx *gin.Context) {
	tenantID := ctx.Param("tenantId")

	if !c.allowRequest(ctx, tenantID) {
		return
	}

	var item IngestLogItemDTO
	if err := ctx.ShouldBindJSON(&item); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result := c.pipelineService.ProcessLog(c.buildRequest(ctx, tenantID, &item))

	ctx.JSON(statusForResult(result), result)
}

// IngestBatch
// @Summary Ingest up to 1000 log entries for a tenant in one request
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param request body IngestBatchRequestDTO true "Log entries"
// @Success 200 {object} IngestBatchResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /logs/ingest/{tenantId}/batch [post]
func (c *IngestController) IngestBatch(ctx *gin.Context) {
	tenantID := ctx.Param("tenantId")

	if ctx.Request.ContentLength > maxBatchPayloadBytes {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Batch payload exceeds 10MB"})
		return
	}

	if !c.allowRequest(ctx, tenantID) {
		return
	}

	var request IngestBatchRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if len(request.Logs) > maxBatchSize {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Batch exceeds " + strconv.Itoa(maxBatchSize) + " entries",
			"code":  logs_core.ErrorBatchTooLarge,
		})
		return
	}

	requests := make([]*logs_pipeline.ProcessLogRequestDTO, 0, len(request.Logs))
	for i := range request.Logs {
		requests = append(requests, c.buildRequest(ctx, tenantID, &request.Logs[i]))
	}

	response := &IngestBatchResponseDTO{
		Results: c.pipelineService.ProcessBatch(requests),
	}
	for _, result := range response.Results {
		if result.Success {
			response.Accepted++
		} else {
			response.Rejected++
		}
	}

	ctx.JSON(http.StatusOK, response)
}

// GetStats
// @Summary Pipeline processing counters (platform admin only)
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} logs_pipeline.PipelineStatsDTO
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /logs/stats [get]
func (c *IngestController) GetStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.pipelineService.Stats())
}

// allowRequest applies the tenant's ingest rate limit. Limiter outages fail
// open so a Valkey blip cannot take ingestion down.
func (c *IngestController) allowRequest(ctx *gin.Context, tenantID string) bool {
	policy := c.policyService.GetPolicy(tenantID)
	if policy.IngestRPSLimit <= 0 {
		return true
	}

	result, err := c.rateLimiter.CheckRateLimit(tenantID, policy.IngestRPSLimit, policy.IngestRPSLimit*5)
	if err != nil {
		c.logger.Warn("rate limit check failed, allowing request",
			slog.String("tenantId", tenantID),
			slog.String("error", err.Error()))
		return true
	}

	if !result.Allowed {
		ctx.Header("Retry-After", strconv.Itoa(result.RetryAfterSec))
		ctx.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Ingest rate limit exceeded",
			"code":  logs_core.ErrorRateLimitExceeded,
		})
		return false
	}

	return true
}

func (c *IngestController) buildRequest(
	ctx *gin.Context,
	tenantID string,
	item *IngestLogItemDTO,
) *logs_pipeline.ProcessLogRequestDTO {
	// A garbage timestamp becomes the zero value: the detailed path
	// rejects it, the essential path defaults it to ingestion time.
	timestamp, err := time_parser.ParseTimestampStrict(item.Timestamp)
	if err != nil {
		c.logger.Debug("unparseable ingest timestamp",
			slog.String("tenantId", tenantID),
			slog.String("error", err.Error()))
	}

	entry := &logs_core.LogEntry{
		ID:            uuid.New(),
		Timestamp:     timestamp,
		Level:         logs_core.LogLevel(item.Level),
		Message:       item.Message,
		Source:        logs_core.LogSource(item.Source),
		TenantID:      tenantID,
		UserID:        item.UserID,
		SessionID:     item.SessionID,
		CorrelationID: item.CorrelationID,
		Meta:          item.Meta,
	}

	requestTenantID := tenantID
	if actor, ok := actors.GetActorFromContext(ctx); ok && !actor.Role.IsPlatformAdmin() {
		requestTenantID = actor.TenantID
	}

	return &logs_pipeline.ProcessLogRequestDTO{
		Entry:           entry,
		RequestTenantID: requestTenantID,
		ClientIP:        ctx.ClientIP(),
	}
}

func statusForResult(result *logs_pipeline.ProcessLogResultDTO) int {
	if result.Success {
		return http.StatusOK
	}

	switch result.State {
	case logs_pipeline.StateFailedStorage, logs_pipeline.StateFailedInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
