package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todoctl/internal/tasklist"
)

// TaskRef is a parsed task reference: a row number from the last listing
// or a literal task ID.
type TaskRef struct {
	Row int    // 1-based row, 0 when ID is set
	ID  string // literal task ID
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the first argument as a task reference.
// All digits means a row number; anything else is taken as a task ID.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		return TaskRef{Row: num}, nil
	}
	return TaskRef{ID: ref}, nil
}

// Resolve returns the task ID the reference points to.
func (r TaskRef) Resolve(list *tasklist.List) (string, error) {
	if r.ID != "" {
		return r.ID, nil
	}
	task, ok := list.At(r.Row)
	if !ok {
		return "", fmt.Errorf("task number out of range: %d (run: todoctl list)", r.Row)
	}
	return task.ID, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
