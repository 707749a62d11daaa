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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle a task's completed state" }
func (c *DoneCmd) Usage() string      { return "todoctl done <ref>" }
func (c *DoneCmd) NeedsService() bool { return true }
func (c *DoneCmd) NeedsAuth() bool    { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	board := openBoard(cfg, svc, out)
	id, ok := resolveRef(board, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	if _, err := board.Toggle(ctx, id); err != nil {
		return reportBackendError(errOut, err)
	}
	saveBoard(cfg, board, errOut)

	printOK(cfg, out)
	return exitcode.Success
}
