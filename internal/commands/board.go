package commands

import (
	"fmt"
	"io"

	"todoctl/internal/config"
	"todoctl/internal/logger"
	"todoctl/internal/output"
	"todoctl/internal/service"
	"todoctl/internal/tasklist"
	"todoctl/internal/todos"
)

// openBoard wraps svc with the cached task list from the last run.
// An unreadable cache is discarded.
func openBoard(cfg *config.Config, svc service.Service, out io.Writer) *todos.Board {
	list, err := tasklist.Load(cfg.CachePath())
	if err != nil {
		logger.Warn("discarding task cache", "error", err)
		list = &tasklist.List{}
	}
	return todos.New(svc, list, output.NewNotifier(out, cfg.Quiet))
}

// saveBoard persists the task list. Failure only warns.
func saveBoard(cfg *config.Config, b *todos.Board, errOut io.Writer) {
	if err := b.List().Save(cfg.CachePath()); err != nil {
		fmt.Fprintf(errOut, "warning: failed to save task cache: %v\n", err)
	}
}

// resolveRef parses args as a task reference against the board's list.
// It prints the error and returns ok=false on failure.
func resolveRef(b *todos.Board, args []string, errOut io.Writer) (string, bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return "", false
	}
	id, err := ref.Resolve(b.List())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return "", false
	}
	return id, true
}

func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}
