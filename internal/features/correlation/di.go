package correlation

import (
	"logwarden/internal/util/logger"
)

var correlationService = NewCorrelationService(logger.GetLogger())

func GetCorrelationService() *CorrelationService {
	return correlationService
}
