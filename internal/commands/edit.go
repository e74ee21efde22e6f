package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdesk/internal/config"
	"taskdesk/internal/dialog"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
)

func init() {
	Register(&EditCmd{})
	Register(&DoneCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// EditCmd implements the edit command by submitting the edit dialog
// with only the given fields changed.
type EditCmd struct {
	title       optString
	description optString
	priority    optString
	status      optString
	due         optString
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"update"} }
func (c *EditCmd) Synopsis() string   { return "Change fields of a task" }
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) Usage() string {
	return "taskdesk edit [--title <t>] [--description <text>] [--priority <p>] [--status <s>] [--due YYYY-MM-DD|none] <ref>"
}

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
	fs.Var(&c.due, "due", "")
}

// changes returns the form fields given on the command line.
func (c *EditCmd) changes() map[string]string {
	m := make(map[string]string)
	add := func(field string, o optString) {
		if o.set {
			m[field] = o.value
		}
	}
	add("title", c.title)
	add("description", c.description)
	add("priority", c.priority)
	add("status", c.status)
	if c.due.set {
		if c.due.value == output.NoDueDate {
			m["due_date"] = ""
		} else {
			m["due_date"] = c.due.value
		}
	}
	return m
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	changes := c.changes()
	if len(changes) == 0 {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --description, --priority, --status or --due)")
		return exitcode.UserError
	}
	return runEdit(ctx, cfg, env, args, changes, out, errOut)
}

// DoneCmd marks a task done.
type DoneCmd struct{}

func (c *DoneCmd) Name() string                   { return "done" }
func (c *DoneCmd) Aliases() []string              { return nil }
func (c *DoneCmd) Synopsis() string               { return "Mark a task done" }
func (c *DoneCmd) Usage() string                  { return "taskdesk done <ref>" }
func (c *DoneCmd) NeedsService() bool             { return true }
func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	return runEdit(ctx, cfg, env, args, map[string]string{"status": "done"}, out, errOut)
}

// runEdit resolves the task, applies changes to the edit dialog and submits it.
func runEdit(ctx context.Context, cfg *config.Config, env *Env, args []string, changes map[string]string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	task, err := resolveTask(ctx, env, ref, cfg.PageSize)
	if err != nil {
		return reportError(errOut, err, false)
	}

	d := dialog.NewEdit(task, env.Svc, env.Query, notifier(cfg, out, errOut))
	d.Open()
	for field, value := range changes {
		if err := d.Set(field, value); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	if _, err := d.Submit(ctx); err != nil {
		return reportError(errOut, err, d.State() == dialog.Failed)
	}
	return exitcode.Success
}
