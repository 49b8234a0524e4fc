package threats

import (
	"sync"

	"logwarden/internal/util/logger"
)

var (
	once             sync.Once
	detectionEngine  *ThreatDetectionEngine
	threatController *ThreatController
)

func setUp() {
	detectionEngine = NewThreatDetectionEngine(
		&GopsutilMetricsProvider{},
		logger.GetLogger(),
	)

	threatController = &ThreatController{
		engine: detectionEngine,
	}
}

func GetThreatDetectionEngine() *ThreatDetectionEngine {
	once.Do(setUp)
	return detectionEngine
}

func GetThreatController() *ThreatController {
	once.Do(setUp)
	return threatController
}
