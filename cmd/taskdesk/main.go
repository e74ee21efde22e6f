// Package main is the entry point for the taskdesk CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"taskdesk/internal/backend/googletasks"
	"taskdesk/internal/backend/restapi"
	"taskdesk/internal/cli"
	"taskdesk/internal/commands"
	"taskdesk/internal/config"
	"taskdesk/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)
	dispatcher.In = os.Stdin
	dispatcher.Interactive = func() bool {
		return isTerminal(os.Stdin) && isTerminal(os.Stdout)
	}

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newService builds the backend named in the config.
func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
	switch cfg.Backend {
	case config.BackendREST:
		return restapi.NewFromConfig(ctx, cfg, logger)
	case config.BackendGoogleTasks:
		return googletasks.New(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
