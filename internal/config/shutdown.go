package config

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

var shouldShutdown atomic.Bool

// StartListeningForShutdownSignal flips the shutdown flag on SIGINT/SIGTERM
// so background workers can drain their buffers before the process exits.
func StartListeningForShutdownSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signals
		shouldShutdown.Store(true)
	}()
}

func IsShouldShutdown() bool {
	return shouldShutdown.Load()
}
