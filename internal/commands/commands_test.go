package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todoctl/internal/api"
	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/tasklist"
	"todoctl/internal/testutil"
)

// runCommand is a helper to run a command with FakeService in a fresh config dir.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runCommandIn(t, t.TempDir(), cmd, svc, args, quiet)
}

// runCommandIn runs a command against an existing config dir so the task
// cache carries over between calls.
func runCommandIn(t *testing.T, dir string, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	cfg.Quiet = quiet

	ctx := context.Background()
	if svc == nil {
		code = cmd.Run(ctx, cfg, nil, args, &outBuf, &errBuf)
	} else {
		code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	}
	return outBuf.String(), errBuf.String(), code
}

func withStdin(t *testing.T, input string) {
	t.Helper()
	old := commands.Stdin
	commands.Stdin = strings.NewReader(input)
	t.Cleanup(func() { commands.Stdin = old })
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todoctl 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	svc.AddTask("Buy eggs", true)

	dir := t.TempDir()
	stdout, stderr, code := runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] Buy milk\n   2  [x] Buy eggs\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	cfg, _ := config.New(dir)
	cache, err := tasklist.Load(cfg.CachePath())
	if err != nil || cache.Len() != 2 {
		t.Errorf("expected 2 cached tasks, got %v, %v", cache, err)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, svc, nil, true)
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestListCommand_TransportError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = &api.TransportError{Op: "GET /api/todos", Err: errors.New("connection refused")}

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: backend error: GET /api/todos: connection refused\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestListCommand_SessionExpired(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = fmt.Errorf("%w: %w", api.ErrUnauthorized, api.ErrRefreshRejected)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: session expired (run: todoctl login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestListCommand_FailureKeepsCache(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	svc.AddTask("Buy eggs", false)
	svc.ListTasksErr = &api.StatusError{StatusCode: 500}
	if _, _, code := runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true); code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}

	cfg, _ := config.New(dir)
	cache, _ := tasklist.Load(cfg.CachePath())
	if cache.Len() != 1 {
		t.Errorf("failed list should leave the cache alone, got %d tasks", cache.Len())
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("older", false)

	cmd := &commands.AddCmd{}
	cmd.SetDescription("two litres")
	dir := t.TempDir()
	stdout, stderr, code := runCommandIn(t, dir, cmd, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	tasks := svc.Tasks()
	if tasks[0].Title != "Buy milk" || tasks[0].Description != "two litres" {
		t.Errorf("unexpected created task %+v", tasks[0])
	}

	cfg, _ := config.New(dir)
	cache, _ := tasklist.Load(cfg.CachePath())
	if first, ok := cache.At(1); !ok || first.ID != tasks[0].ID {
		t.Errorf("created task should be first in the cache, got %+v", first)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"x"}, true)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"  "}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("expected title error, got %q", stderr)
	}
	if len(svc.Tasks()) != 0 {
		t.Error("no task should be created")
	}
}

// Tests for done command
func TestDoneCommand_ByRow(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	svc.AddTask("Buy eggs", false)
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	stdout, stderr, code := runCommandIn(t, dir, &commands.DoneCmd{}, svc, []string{"2"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if tasks := svc.Tasks(); tasks[0].Completed || !tasks[1].Completed {
		t.Errorf("expected only row 2 completed, got %+v", tasks)
	}

	cfg, _ := config.New(dir)
	cache, _ := tasklist.Load(cfg.CachePath())
	if row, _ := cache.At(2); !row.Completed {
		t.Error("cache should reflect the confirmed toggle")
	}
}

func TestDoneCommand_EmptyResponseFlipsCache(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", true)
	svc.ToggleEmpty = true
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	if _, stderr, code := runCommandIn(t, dir, &commands.DoneCmd{}, svc, []string{"1"}, true); code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}

	cfg, _ := config.New(dir)
	cache, _ := tasklist.Load(cfg.CachePath())
	if row, _ := cache.At(1); row.Completed {
		t.Error("cached flag should be flipped when the server returns no task")
	}
}

func TestDoneCommand_ByID(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTask("Buy milk", false)

	_, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{id}, true)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !svc.Tasks()[0].Completed {
		t.Error("expected task completed")
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task reference required\n" {
		t.Errorf("expected ref required error, got %q", stderr)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: task number out of range: 1 (run: todoctl list)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDoneCommand_UnknownID(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"nope"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found\n" {
		t.Errorf("expected not found error, got %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	svc.AddTask("Buy eggs", false)
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	stdout, _, code := runCommandIn(t, dir, &commands.RmCmd{}, svc, []string{"1"}, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].Title != "Buy eggs" {
		t.Errorf("expected only 'Buy eggs' left, got %+v", tasks)
	}

	cfg, _ := config.New(dir)
	cache, _ := tasklist.Load(cfg.CachePath())
	if row, _ := cache.At(1); cache.Len() != 1 || row.Title != "Buy eggs" {
		t.Errorf("cache should drop the deleted task, got %+v", cache.Tasks())
	}
}

func TestRmCommand_BackendErrorKeepsCache(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	svc.DeleteTaskErr = &api.StatusError{StatusCode: 500, Message: "boom"}
	_, stderr, code := runCommandIn(t, dir, &commands.RmCmd{}, svc, []string{"1"}, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: server returned 500: boom\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}

	cfg, _ := config.New(dir)
	cache, _ := tasklist.Load(cfg.CachePath())
	if cache.Len() != 1 {
		t.Error("failed delete should leave the cache alone")
	}
}

// Tests for edit command
func TestEditCommand_KeepsUnsetFields(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTask("Buy milk", false)
	svc.UpdateTask(context.Background(), id, service.TaskInput{Title: "Buy milk", Description: "two litres"})
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	cmd := &commands.EditCmd{}
	cmd.SetTitle("Buy oat milk")
	if _, stderr, code := runCommandIn(t, dir, cmd, svc, []string{"1"}, true); code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}

	task := svc.Tasks()[0]
	if task.Title != "Buy oat milk" || task.Description != "two litres" {
		t.Errorf("expected title changed and description kept, got %+v", task)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"1"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "nothing to change") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for show command
func TestShowCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTask("Buy milk", true)

	stdout, _, code := runCommand(t, &commands.ShowCmd{}, svc, []string{id}, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "id:          " + id + "\ntitle:       Buy milk\nstatus:      completed\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Tests for purge command
func TestPurgeCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", true)
	svc.AddTask("b", false)
	svc.AddTask("c", true)
	svc.AddTask("d", false)
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	stdout, _, code := runCommandIn(t, dir, &commands.PurgeCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "purge: 2 completed todos deleted\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	cfg, _ := config.New(dir)
	cache, _ := tasklist.Load(cfg.CachePath())
	tasks := cache.Tasks()
	if len(tasks) != 2 || tasks[0].Title != "b" || tasks[1].Title != "d" {
		t.Errorf("expected [b d] in order, got %+v", tasks)
	}
}

// Tests for stats command
func TestStatsCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", true)
	svc.AddTask("b", false)

	stdout, _, code := runCommand(t, &commands.StatsCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "total:     2\ncompleted: 1\npending:   1\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Tests for login and register
func TestLoginCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetAuthenticated(false)
	svc.Users["alice"] = "secret"
	withStdin(t, "secret\n")

	dir := t.TempDir()
	cfg, _ := config.New(dir)
	if err := tasklist.New(nil).Save(cfg.CachePath()); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommandIn(t, dir, &commands.LoginCmd{}, svc, []string{"alice"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if !svc.Authenticated() {
		t.Error("expected authenticated after login")
	}
	if _, err := os.Stat(cfg.CachePath()); !os.IsNotExist(err) {
		t.Error("login should drop the previous task cache")
	}
}

func TestLoginCommand_CreatesConfigDir(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetAuthenticated(false)
	svc.Users["alice"] = "secret"
	withStdin(t, "secret\n")

	dir := filepath.Join(t.TempDir(), "nested", "todoctl")
	if _, _, code := runCommandIn(t, dir, &commands.LoginCmd{}, svc, []string{"alice"}, true); code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected config dir created, got %v", err)
	}
}

func TestLoginCommand_WrongPassword(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetAuthenticated(false)
	svc.Users["alice"] = "secret"
	withStdin(t, "nope\n")

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, svc, []string{"alice"}, false)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: Incorrect password\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_MissingPassword(t *testing.T) {
	svc := testutil.NewFakeService()
	withStdin(t, "")

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, svc, []string{"alice"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: username and password required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand_PromptsForUsername(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetAuthenticated(false)
	withStdin(t, "bob\nhunter2\n")

	stdout, stderr, code := runCommand(t, &commands.RegisterCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if svc.Users["bob"] != "hunter2" {
		t.Errorf("expected bob registered, got %v", svc.Users)
	}
}

func TestRegisterCommand_Conflict(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Users["bob"] = "x"
	withStdin(t, "hunter2\n")

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, svc, []string{"bob"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: User already exists\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for logout and status
func TestLogoutCommand_RemovesSessionAndCache(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	dir := t.TempDir()
	runCommandIn(t, dir, &commands.ListCmd{}, svc, nil, true)

	stdout, _, code := runCommandIn(t, dir, &commands.LogoutCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if svc.Authenticated() {
		t.Error("expected anonymous after logout")
	}
	cfg, _ := config.New(dir)
	if _, err := os.Stat(cfg.CachePath()); !os.IsNotExist(err) {
		t.Error("logout should remove the task cache")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetAuthenticated(false)

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.LogoutCmd{}, svc, nil, true)
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestStatusCommand(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.StatusCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "session: logged in") {
		t.Errorf("unexpected status %q", stdout)
	}

	svc.SetAuthenticated(false)
	stdout, _, code = runCommand(t, &commands.StatusCmd{}, svc, nil, false)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stdout, "session: not logged in") {
		t.Errorf("unexpected status %q", stdout)
	}
}
