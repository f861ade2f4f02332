// Package main provides the fetch binary: it fetches and aggregates seasons from the results API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"f1stats/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewStageCommand("fetch", os.Args[1:]).ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("❌ %v", err)
	}
}
