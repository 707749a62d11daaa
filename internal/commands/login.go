package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"

	"todoctl/internal/api"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

// Stdin is where login and register read credentials.
var Stdin io.Reader = os.Stdin

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Log in and store tokens" }
func (c *LoginCmd) Usage() string      { return "todoctl login [common flags] [<username>]" }
func (c *LoginCmd) NeedsService() bool { return true }
func (c *LoginCmd) NeedsAuth() bool    { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAuthenticate(ctx, cfg, args, out, errOut, false, svc.Login)
}

// RegisterCmd implements the register command.
type RegisterCmd struct{}

func (c *RegisterCmd) Name() string       { return "register" }
func (c *RegisterCmd) Aliases() []string  { return nil }
func (c *RegisterCmd) Synopsis() string   { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string      { return "todoctl register [common flags] [<username>]" }
func (c *RegisterCmd) NeedsService() bool { return true }
func (c *RegisterCmd) NeedsAuth() bool    { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAuthenticate(ctx, cfg, args, out, errOut, true, svc.Register)
}

type authFunc func(ctx context.Context, username, password string) error

// errPasswordMismatch is returned when the confirmation differs.
var errPasswordMismatch = errors.New("passwords don't match")

// runAuthenticate is the shared implementation for login and register.
// With confirm set, a terminal user types the password twice.
func runAuthenticate(ctx context.Context, cfg *config.Config, args []string, out, errOut io.Writer, confirm bool, auth authFunc) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	username, password, err := readCredentials(args, errOut, confirm)
	if errors.Is(err, errPasswordMismatch) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read credentials: %v\n", err)
		return exitcode.UserError
	}
	if username == "" || password == "" {
		fmt.Fprintln(errOut, "error: username and password required")
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := auth(ctx, username, password); err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
			fmt.Fprintf(errOut, "error: %s\n", statusMessage(se))
			if se.StatusCode == http.StatusUnauthorized {
				return exitcode.AuthError
			}
			return exitcode.UserError
		}
		return reportBackendError(errOut, err)
	}

	// Row numbers from another account are meaningless.
	if err := cfg.RemoveCache(); err != nil {
		fmt.Fprintf(errOut, "warning: failed to remove task cache: %v\n", err)
	}

	printOK(cfg, out)
	return exitcode.Success
}

// readCredentials takes the username from args or prompts for it, then
// reads the password. Prompts go to errOut. On a terminal the password is
// not echoed, and with confirm set it is asked for a second time.
func readCredentials(args []string, errOut io.Writer, confirm bool) (string, string, error) {
	in := bufio.NewReader(Stdin)
	tty := isTerminal(Stdin)

	var username string
	if len(args) == 1 {
		username = strings.TrimSpace(args[0])
	} else {
		if tty {
			fmt.Fprint(errOut, "Username: ")
		}
		line, err := readLine(in)
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(line)
	}

	if !tty {
		password, err := readLine(in)
		if err != nil {
			return "", "", err
		}
		return username, password, nil
	}

	password, err := readSecret(errOut, "Password: ")
	if err != nil {
		return "", "", err
	}
	if confirm && password != "" {
		again, err := readSecret(errOut, "Confirm password: ")
		if err != nil {
			return "", "", err
		}
		if again != password {
			return "", "", errPasswordMismatch
		}
	}
	return username, password, nil
}

// isTerminal reports whether r is an interactive terminal.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readSecret prompts on errOut and reads a line from Stdin without echo.
var readSecret = func(errOut io.Writer, prompt string) (string, error) {
	f := Stdin.(*os.File)
	fmt.Fprint(errOut, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(errOut)
	return string(b), err
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
