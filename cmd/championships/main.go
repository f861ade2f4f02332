// Package main provides the championships binary: it recounts driver titles from career summaries.
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

	if err := cli.NewStageCommand("championships", os.Args[1:]).ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("❌ %v", err)
	}
}
