package logs_pipeline

import (
	"sync"

	"logwarden/internal/features/correlation"
	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/features/policies"
	"logwarden/internal/features/threats"
	"logwarden/internal/util/logger"
)

var (
	once            sync.Once
	pipelineService *PipelineService
)

func setUp() {
	pipelineService = NewPipelineService(
		policies.GetPolicyService(),
		correlation.GetCorrelationService(),
		logs_core.GetLogStore(),
		logger.GetLogger(),
	)

	pipelineService.SetViolationReporter(threats.GetThreatDetectionEngine())
}

func GetPipelineService() *PipelineService {
	once.Do(setUp)
	return pipelineService
}
