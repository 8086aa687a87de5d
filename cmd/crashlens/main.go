// This is the main entrypoint for the crashlens binary.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/crashlens/crashlens/cmd"
	"github.com/crashlens/crashlens/internal/observability"
)

func main() {
	// Listen for interrupt signals so the server can drain connections.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
