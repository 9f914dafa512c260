// Package main is the entry point for the tama task runner.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/tama/internal/cli"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return cli.Execute(ctx, cli.Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Build: cli.BuildInfo{
			Version: version,
			Commit:  commit,
			Date:    date,
		},
	}, os.Args[1:])
}
