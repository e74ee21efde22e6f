package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskdesk/internal/config"
	"taskdesk/internal/dialog"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/form"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command by submitting the create dialog.
type AddCmd struct {
	description string
	priority    string
	status      string
	due         string
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) NeedsService() bool { return true }
func (c *AddCmd) Usage() string {
	return "taskdesk add [--description <text>] [--priority <p>] [--status <s>] [--due YYYY-MM-DD] <title...>"
}

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	defaults := form.Defaults()
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.priority, "priority", defaults.Priority, "")
	fs.StringVar(&c.priority, "p", defaults.Priority, "")
	fs.StringVar(&c.status, "status", defaults.Status, "")
	fs.StringVar(&c.status, "s", defaults.Status, "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	d := dialog.NewCreate(env.Svc, env.Query, notifier(cfg, out, errOut))
	d.Open()
	d.SetValues(form.Values{
		Title:       strings.Join(args, " "),
		Description: c.description,
		Priority:    c.priority,
		Status:      c.status,
		DueDate:     c.due,
	})

	if _, err := d.Submit(ctx); err != nil {
		return reportError(errOut, err, d.State() == dialog.Failed)
	}
	return exitcode.Success
}
