package commands

import (
	"context"
	"flag"
	"io"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return nil }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "todoctl rm <ref>" }
func (c *RmCmd) NeedsService() bool { return true }
func (c *RmCmd) NeedsAuth() bool    { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	board := openBoard(cfg, svc, out)
	id, ok := resolveRef(board, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	if err := board.Delete(ctx, id); err != nil {
		return reportBackendError(errOut, err)
	}
	saveBoard(cfg, board, errOut)

	printOK(cfg, out)
	return exitcode.Success
}
