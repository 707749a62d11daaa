package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/todos"
)

func init() {
	Register(&EditCmd{})
}

// optionalString is a flag value that remembers whether it was set.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	return &o.value
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optionalString
	description optionalString
}

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(t string) { c.title.Set(t) }

// SetDescription sets the new description (for testing).
func (c *EditCmd) SetDescription(d string) { c.description.Set(d) }

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Change a task's title or description" }
func (c *EditCmd) Usage() string      { return "todoctl edit [--title <t>] [-d <text>] <ref>" }
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) NeedsAuth() bool    { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !c.title.set && !c.description.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --description)")
		return exitcode.UserError
	}
	if c.title.set && strings.TrimSpace(c.title.value) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	board := openBoard(cfg, svc, out)
	id, ok := resolveRef(board, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	edit := todos.Edit{Title: c.title.ptr(), Description: c.description.ptr()}
	if _, err := board.Update(ctx, id, edit); err != nil {
		return reportBackendError(errOut, err)
	}
	saveBoard(cfg, board, errOut)

	printOK(cfg, out)
	return exitcode.Success
}
