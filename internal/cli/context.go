package cli

import (
	"context"
	"os/signal"
	"syscall"
)

// cmdContext is cancelled on interrupt, which abandons any in-flight
// poll without affecting the network-side outcome.
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}
