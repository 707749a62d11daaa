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
	Register(&PurgeCmd{})
}

// PurgeCmd implements the purge command.
type PurgeCmd struct{}

func (c *PurgeCmd) Name() string       { return "purge" }
func (c *PurgeCmd) Aliases() []string  { return nil }
func (c *PurgeCmd) Synopsis() string   { return "Delete all completed tasks" }
func (c *PurgeCmd) Usage() string      { return "todoctl purge [common flags]" }
func (c *PurgeCmd) NeedsService() bool { return true }
func (c *PurgeCmd) NeedsAuth() bool    { return true }

func (c *PurgeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PurgeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	board := openBoard(cfg, svc, out)
	if _, err := board.DeleteCompleted(ctx); err != nil {
		return reportBackendError(errOut, err)
	}
	saveBoard(cfg, board, errOut)
	return exitcode.Success
}
