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
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string      { return "todoctl logout [common flags]" }
func (c *LogoutCmd) NeedsService() bool { return true }
func (c *LogoutCmd) NeedsAuth() bool    { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	wasLoggedIn := svc.Authenticated()

	// Clear even when anonymous so a stray refresh token goes too.
	if err := svc.Logout(ctx); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove tokens: %v\n", err)
		return exitcode.AuthError
	}
	if err := cfg.RemoveCache(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove task cache: %v\n", err)
		return exitcode.UserError
	}

	if !wasLoggedIn {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}
	printOK(cfg, out)
	return exitcode.Success
}
