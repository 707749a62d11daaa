package commands_test

import (
	"context"
	"flag"
	"io"
	"strings"
	"testing"

	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/service"
)

type stubCmd struct {
	name    string
	aliases []string
	service bool
	auth    bool
}

func (s *stubCmd) Name() string                   { return s.name }
func (s *stubCmd) Aliases() []string              { return s.aliases }
func (s *stubCmd) Synopsis() string               { return "" }
func (s *stubCmd) Usage() string                  { return "" }
func (s *stubCmd) NeedsService() bool             { return s.service }
func (s *stubCmd) NeedsAuth() bool                { return s.auth }
func (s *stubCmd) RegisterFlags(fs *flag.FlagSet) {}
func (s *stubCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return 0
}

func TestRegistry_FindByAlias(t *testing.T) {
	r := commands.NewRegistry()
	cmd := &stubCmd{name: "list", aliases: []string{"ls"}, service: true, auth: true}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got, ok := r.Find("ls"); !ok || got != cmd {
		t.Error("expected alias to resolve to the command")
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 unique command, got %d", len(r.All()))
	}
}

func TestRegistry_Conflict(t *testing.T) {
	r := commands.NewRegistry()
	r.Register(&stubCmd{name: "list", aliases: []string{"ls"}, service: true})

	err := r.Register(&stubCmd{name: "ls", service: true})
	if err == nil || !strings.Contains(err.Error(), "already used by list") {
		t.Errorf("expected conflict with list, got %v", err)
	}
	if _, ok := r.Find("ls"); !ok {
		t.Error("original alias should survive a failed register")
	}
}

func TestRegistry_AuthWithoutService(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&stubCmd{name: "broken", auth: true}); err == nil {
		t.Error("expected error for a login-only command without backend")
	}
	if _, ok := r.Find("broken"); ok {
		t.Error("rejected command must not be registered")
	}
}

func TestDefaultRegistry(t *testing.T) {
	var offline []string
	for _, cmd := range commands.DefaultRegistry.All() {
		if !cmd.NeedsService() {
			offline = append(offline, cmd.Name())
		}
	}
	if strings.Join(offline, ",") != "help,version" {
		t.Errorf("expected only help and version offline, got %v", offline)
	}
	for _, name := range []string{"ls", "create", "toggle", "register", "purge", "stats"} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("expected %s registered", name)
		}
	}
}
