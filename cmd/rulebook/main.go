// Command rulebook keeps an offline copy of a published rules dataset,
// searches it, and serves it to terminals, HTTP clients and MCP hosts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/cli"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(Version)
	cli.SetServiceFactory(func(opts cli.Options) (*cli.Services, error) {
		return NewMain().Build(ctx, opts)
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
