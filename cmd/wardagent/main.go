// Package main provides the entry point for the wardagent CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/careops/wardagent/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := cli.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
