package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samzong/gpush/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.SetContext(ctx)

	err := cmd.Execute()
	// workflow failures are logged and swallowed, so an interrupted run may return nil
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\nOperation cancelled")
		os.Exit(130)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
