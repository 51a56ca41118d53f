package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// exitInterrupted follows the shell convention of 128 + SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
		return
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		stop()
		os.Exit(exitInterrupted)
	default:
		fmt.Fprintln(os.Stderr, "clipper:", err)
		stop()
		os.Exit(1)
	}
}
