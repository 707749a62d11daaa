package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
// It exits with AuthError when not logged in so scripts can test it.
type StatusCmd struct{}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return nil }
func (c *StatusCmd) Synopsis() string   { return "Show login state" }
func (c *StatusCmd) Usage() string      { return "todoctl status [common flags]" }
func (c *StatusCmd) NeedsService() bool { return true }
func (c *StatusCmd) NeedsAuth() bool    { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	st, err := svc.Status(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	output.FormatStatus(out, st, time.Now())

	if !st.Authenticated {
		return exitcode.AuthError
	}
	return exitcode.Success
}
