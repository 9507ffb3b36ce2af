package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals are the signals that stop a running command.
var ShutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. Call stop
// to release the signal handler.
func SignalContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, ShutdownSignals...)
}
