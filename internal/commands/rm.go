package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskdesk/internal/config"
	"taskdesk/internal/dialog"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command by confirming the delete dialog.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskdesk rm [--yes] <ref>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	task, err := resolveTask(ctx, env, ref, cfg.PageSize)
	if err != nil {
		return reportError(errOut, err, false)
	}

	d := dialog.NewDelete(task, env.Svc, env.Query, notifier(cfg, out, errOut))
	d.Open()
	if !c.yes && !confirm(env.In, out, output.NormalizeTitle(task.Title)) {
		_ = d.Close()
		if !cfg.Quiet {
			fmt.Fprintln(out, "aborted")
		}
		return exitcode.Success
	}

	if err := d.Confirm(ctx); err != nil {
		return reportError(errOut, err, d.State() == dialog.Failed)
	}
	return exitcode.Success
}

// confirm asks the delete question and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, title string) bool {
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprintf(out, "delete task %q? [y/N] ", title)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
