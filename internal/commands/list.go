package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
	"taskdesk/internal/taskquery"
	"taskdesk/internal/view"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// It also serves `taskdesk` with no args when stdout is not a terminal.
type ListCmd struct {
	format string
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "taskdesk list [--format table|json|yaml]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", string(output.FormatTable), "")
	fs.StringVar(&c.format, "f", string(output.FormatTable), "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	e := taskquery.FetchList(ctx, env.Query, env.Svc, cfg.PageSize)
	list := view.Derive(e)

	switch {
	case list.Kind == view.Error:
		fmt.Fprintf(errOut, "error: %s\n", view.ErrorText(list.Message))
		return exitcode.ForError(e.Err)
	case format != output.FormatTable:
		err = output.WriteTasks(out, format, list.Tasks())
	case list.Kind == view.Empty && cfg.Quiet:
		return exitcode.Success
	default:
		err = view.Render(out, list)
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
