package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskdesk help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, cmd := range DefaultRegistry.All() {
		name := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", name, cmd.Synopsis())
	}
	tw.Flush()
	return exitcode.Success
}

const helpText = `Usage:
  taskdesk                       Open the interactive UI (lists tasks when not on a terminal)
  taskdesk ui [common flags]
  taskdesk list [common flags] [--format table|json|yaml]
  taskdesk show [common flags] [--format table|json|yaml] <ref>
  taskdesk add [common flags] [--description <text>] [--priority <p>] [--status <s>] [--due YYYY-MM-DD] <title...>
  taskdesk edit [common flags] [--title <t>] [--description <text>] [--priority <p>] [--status <s>] [--due YYYY-MM-DD|none] <ref>
  taskdesk done [common flags] <ref>
  taskdesk rm [common flags] [--yes] <ref>
  taskdesk help
  taskdesk version

A <ref> is a row number from "taskdesk list" or a task ID.
Priorities: low, medium, high, urgent. Statuses: todo, in_progress, done, cancelled.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
