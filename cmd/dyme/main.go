package main

import (
	"fmt"
	"os"

	"dyme-cli/internal/cli"
	"dyme-cli/internal/logger"
)

func main() {
	// Defaults are baked into the binary at build time via ldflags;
	// environment variables and flags override them
	if err := cli.Execute(); err != nil {
		logger.ErrorWithDetails(fmt.Sprintf("Error: %v", err), err)
		logger.Sync()
		os.Exit(1)
	}
}
