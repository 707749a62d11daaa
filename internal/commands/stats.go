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
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string       { return "stats" }
func (c *StatsCmd) Aliases() []string  { return nil }
func (c *StatsCmd) Synopsis() string   { return "Show task counts" }
func (c *StatsCmd) Usage() string      { return "todoctl stats [common flags]" }
func (c *StatsCmd) NeedsService() bool { return true }
func (c *StatsCmd) NeedsAuth() bool    { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	st, err := openBoard(cfg, svc, out).Stats(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}
	output.FormatStats(out, st)
	return exitcode.Success
}
