package logs_core

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"logwarden/internal/config"
	"logwarden/internal/util/logger"
)

var (
	once                 sync.Once
	openSearchRepository *OpenSearchRepository
)

func GetOpenSearchRepository() *OpenSearchRepository {
	once.Do(func() {
		env := config.GetEnv()

		openSearchRepository = &OpenSearchRepository{
			client: &http.Client{
				Timeout: 10 * time.Second,
				Transport: &http.Transport{
					MaxIdleConns:        100,
					MaxIdleConnsPerHost: 10,
					MaxConnsPerHost:     50,
					IdleConnTimeout:     90 * time.Second,
					DisableKeepAlives:   false,
					ForceAttemptHTTP2:   false, // Stick to HTTP/1.1 for OpenSearch
				},
			},
			baseURL: strings.TrimRight(
				fmt.Sprintf("%s:%s", env.OpenSearchURL, env.OpenSearchAPIPort),
				"/",
			),
			indexPattern: "logs-*",
			indexPrefix:  "logs-",
			timeout:      5 * time.Minute,
			logger:       logger.GetLogger(),
		}
	})

	return openSearchRepository
}

func GetLogStore() LogStore {
	return GetOpenSearchRepository()
}
