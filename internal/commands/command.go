// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"taskdesk/internal/config"
	"taskdesk/internal/dialog"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/form"
	"taskdesk/internal/query"
	"taskdesk/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsService returns true if the command talks to the backend.
	// Commands like help and version return false.
	NeedsService() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided.
	// env is nil if NeedsService() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int
}

// Env is what a backend command runs against.
type Env struct {
	Svc    service.Service
	Query  *query.Client
	Logger *slog.Logger

	// In is read for confirmation prompts.
	In io.Reader
}

// lineNotifier prints dialog notifications as CLI lines.
type lineNotifier struct {
	out, errOut io.Writer
	quiet       bool
}

func (n lineNotifier) Success(msg string) {
	if !n.quiet {
		fmt.Fprintln(n.out, msg)
	}
}

func (n lineNotifier) Error(msg string) {
	fmt.Fprintf(n.errOut, "error: %s\n", msg)
}

func notifier(cfg *config.Config, out, errOut io.Writer) lineNotifier {
	return lineNotifier{out: out, errOut: errOut, quiet: cfg.Quiet}
}

// reportError prints err and returns its exit code.
// Request errors from a dialog were already printed by its notifier.
func reportError(errOut io.Writer, err error, notified bool) int {
	var ve *form.ValidationError
	if errors.Is(err, dialog.ErrInvalid) && errors.As(err, &ve) {
		for _, f := range ve.Fields {
			fmt.Fprintf(errOut, "error: %s\n", f.Message)
		}
		return exitcode.UserError
	}
	if !notified {
		fmt.Fprintf(errOut, "error: %s\n", service.ErrorMessage(err))
	}
	if errors.Is(err, ErrOutOfRange) {
		return exitcode.UserError
	}
	return exitcode.ForError(err)
}
