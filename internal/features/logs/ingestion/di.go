package logs_ingestion

import (
	"sync"

	logs_core "logwarden/internal/features/logs/core"
	logs_pipeline "logwarden/internal/features/logs/pipeline"
	"logwarden/internal/features/policies"
	cache_utils "logwarden/internal/util/cache"
	"logwarden/internal/util/logger"
	"logwarden/internal/util/rate_limit"
)

var (
	once                sync.Once
	ingestController    *IngestController
	securityEventWorker *SecurityEventWorker
	retentionWorker     *RetentionWorker
)

func setUp() {
	ingestController = &IngestController{
		pipelineService: logs_pipeline.GetPipelineService(),
		policyService:   policies.GetPolicyService(),
		rateLimiter:     rate_limit.NewRateLimiter(),
		logger:          logger.GetLogger(),
	}

	securityEventWorker = NewSecurityEventWorker(
		cache_utils.NewValkeyQueueService(),
		logger.GetLogger(),
	)
	logs_pipeline.GetPipelineService().SetEventPublisher(securityEventWorker)

	retentionWorker = NewRetentionWorker(
		policies.GetPolicyService(),
		logs_core.GetLogStore(),
		logger.GetLogger(),
	)
}

func GetIngestController() *IngestController {
	once.Do(setUp)
	return ingestController
}

func GetSecurityEventWorker() *SecurityEventWorker {
	once.Do(setUp)
	return securityEventWorker
}

func GetRetentionWorker() *RetentionWorker {
	once.Do(setUp)
	return retentionWorker
}

func StartWorkers() {
	GetSecurityEventWorker().StartWorkers()
	GetRetentionWorker().StartWorkers()
}
