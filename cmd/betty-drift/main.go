package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bettyprotocol/betty-drift/internal/cmd"
	"github.com/bettyprotocol/betty-drift/internal/exitcode"
	"github.com/bettyprotocol/betty-drift/internal/ux"
)

func main() {
	// Create a context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nScan interrupted")
			exitcode.Exit(exitcode.Interrupted)
		}

		// strict mode and META.yaml drift have already been reported
		var found *exitcode.DriftFoundError
		if !errors.As(err, &found) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ux.EnhanceError(err))
		}
		exitcode.ExitWithError(err)
	}
	exitcode.Exit(exitcode.Success)
}
