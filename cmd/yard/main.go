package main

import (
	"os"

	"github.com/syn-ce/os/internal/cli"
	"github.com/syn-ce/os/internal/logging"
)

// main is the entry point for the yard CLI binary.
func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		logger := logging.NewLogger(os.Stderr, logging.LevelError)
		logger.Error("command failed", "error", err)
		os.Exit(cli.GetExitCode(err))
	}
}
