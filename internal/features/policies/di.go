package policies

import (
	"sync"

	"logwarden/internal/cache"
	cache_utils "logwarden/internal/util/cache"
	"logwarden/internal/util/logger"
)

var (
	once             sync.Once
	policyService    *PolicyService
	policyController *PolicyController
)

func setUp() {
	policyRepository := &PolicyRepository{}

	policyService = &PolicyService{
		policyRepository: policyRepository,
		policyCacheUtil: cache_utils.NewCacheUtilWithExpiry[ModulePolicy](
			cache.GetCache(),
			"logwarden:policies:",
			PolicyCacheExpiry,
		),
		logger: logger.GetLogger(),
	}

	policyController = &PolicyController{
		policyService: policyService,
	}
}

func GetPolicyService() *PolicyService {
	once.Do(setUp)
	return policyService
}

func GetPolicyController() *PolicyController {
	once.Do(setUp)
	return policyController
}
