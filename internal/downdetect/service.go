package downdetect

import (
	"fmt"

	logs_core "logwarden/internal/features/logs/core"
	"logwarden/internal/storage"
	cache_utils "logwarden/internal/util/cache"
)

type DowndetectService struct {
	logStore logs_core.LogStore
}

// IsAvailable probes every external dependency the pipeline needs: the
// policy database, the Valkey cache, and the log store.
func (s *DowndetectService) IsAvailable() error {
	if err := storage.GetDb().Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}

	if err := s.testCacheConnection(); err != nil {
		return fmt.Errorf("cache check failed: %w", err)
	}

	if err := s.logStore.Ping(); err != nil {
		return fmt.Errorf("log store check failed: %w", err)
	}

	return nil
}

func (s *DowndetectService) testCacheConnection() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache connection test panicked: %v", r)
		}
	}()

	cache_utils.TestCacheConnection()
	return nil
}
