package commands

import (
	"context"
	"flag"
	"io"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Show one task" }
func (c *ShowCmd) Usage() string      { return "todoctl show [common flags] <ref>" }
func (c *ShowCmd) NeedsService() bool { return true }
func (c *ShowCmd) NeedsAuth() bool    { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	board := openBoard(cfg, svc, out)
	id, ok := resolveRef(board, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	task, err := board.Get(ctx, id)
	if err != nil {
		return reportBackendError(errOut, err)
	}
	saveBoard(cfg, board, errOut)

	output.FormatTaskDetails(out, task)
	return exitcode.Success
}
