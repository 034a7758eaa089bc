package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// WithSignals returns a child context cancelled on SIGINT or SIGTERM.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
