// Package main provides the pipeline binary: it runs every stage and writes the canonical document.
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

	if err := cli.NewStageCommand("pipeline", os.Args[1:]).ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("❌ %v", err)
	}
}
