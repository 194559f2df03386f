package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Cancel in-flight requests on Ctrl+C or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if ferr := flushMetrics(); ferr != nil {
		fmt.Fprintln(os.Stderr, ferr)
	}
	if err != nil {
		os.Exit(1)
	}
}
