package gateway

import (
	"sync"

	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/features/policies"
	"logwarden/internal/util/logger"
)

var (
	once              sync.Once
	gatewayService    *GatewayService
	gatewayController *GatewayController
)

func setUp() {
	gatewayService = NewGatewayService(
		policies.GetPolicyService(),
		policies.GetPolicyService(),
		logs_core.GetLogStore(),
		logger.GetLogger(),
	)

	gatewayController = &GatewayController{
		gatewayService: gatewayService,
	}
}

func GetGatewayService() *GatewayService {
	once.Do(setUp)
	return gatewayService
}

func GetGatewayController() *GatewayController {
	once.Do(setUp)
	return gatewayController
}
