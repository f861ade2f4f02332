// Package main provides the junior binary: it looks up feeder-series years of recent debutants.
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

	if err := cli.NewStageCommand("junior", os.Args[1:]).ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("❌ %v", err)
	}
}
