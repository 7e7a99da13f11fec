// Command tabstruct builds table grids from structure detections, fills
// them by OCR, merges split rows, and exports the result.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsawler/tabstruct/internal/cli"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCommand(version).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
