package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once sync.Once
	log  *slog.Logger
)

func GetLogger() *slog.Logger {
	once.Do(func() {
		handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})

		log = slog.New(handler)
		slog.SetDefault(log)
	})

	return log
}
