package downdetect

import (
	"sync"

	logs_core "logwarden/internal/features/logs/core"
)

var (
	once                 sync.Once
	downdetectController *DowndetectController
)

func setUp() {
	downdetectService := &DowndetectService{
		logStore: logs_core.GetLogStore(),
	}

	downdetectController = &DowndetectController{
		downdetectService: downdetectService,
	}
}

func GetDowndetectController() *DowndetectController {
	once.Do(setUp)
	return downdetectController
}
