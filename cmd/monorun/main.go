// Package main is the entry point for the monorun build orchestrator.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/monorun/cmd/monorun/commands"
	"go.trai.ch/monorun/internal/app"
	_ "go.trai.ch/monorun/internal/wiring"
)

// ComponentProvider initializes the application components.
type ComponentProvider func(ctx context.Context) (*app.Components, error)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr, executeGraft)
	cancel()
	os.Exit(code)
}

func executeGraft(ctx context.Context) (*app.Components, error) {
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	return components, err
}

func run(ctx context.Context, args []string, stderr io.Writer, provide ComponentProvider, opts ...func(*app.App)) int {
	components, err := provide(ctx)
	if err != nil {
		// The logger is not available yet.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}
