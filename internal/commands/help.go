package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todoctl help" }
func (c *HelpCmd) NeedsService() bool { return false }
func (c *HelpCmd) NeedsAuth() bool    { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todoctl                                           List all tasks
  todoctl list [common flags]                       List all tasks (alias: ls)
  todoctl show [common flags] <ref>                 Show one task
  todoctl add [common flags] [-d <text>] <title...> Create a task (alias: create)
  todoctl edit [common flags] [--title <t>] [-d <text>] <ref>
  todoctl done [common flags] <ref>                 Toggle completed (alias: toggle)
  todoctl rm [common flags] <ref>                   Delete a task
  todoctl purge [common flags]                      Delete all completed tasks
  todoctl stats [common flags]                      Show task counts
  todoctl register [common flags] [<username>]
  todoctl login [common flags] [<username>]
  todoctl logout [common flags]
  todoctl status [common flags]
  todoctl help
  todoctl version

<ref> is a row number from the last listing or a task ID.

Common flags:
  --config <dir>   Override config directory
  --server <url>   Override backend URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
