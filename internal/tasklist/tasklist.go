// Package tasklist holds the ordered local copy of the user's tasks.
//
// The list mirrors what the server confirmed. It never holds two tasks with
// the same ID.
package tasklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"todoctl/internal/service"
)

// List is an ordered task cache. The zero value is an empty list.
type List struct {
	tasks []service.Task
}

// New builds a List from server order, keeping the first copy of each ID.
func New(tasks []service.Task) *List {
	l := &List{}
	l.Reset(tasks)
	return l
}

// Reset replaces the contents with tasks, dropping repeated IDs.
func (l *List) Reset(tasks []service.Task) {
	seen := make(map[string]bool, len(tasks))
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	l.tasks = out
}

// Tasks returns a copy of the tasks in order.
func (l *List) Tasks() []service.Task {
	out := make([]service.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Len returns the number of tasks.
func (l *List) Len() int { return len(l.tasks) }

// Prepend puts t first, evicting any entry with the same ID.
func (l *List) Prepend(t service.Task) {
	rest := l.tasks[:0:0]
	for _, old := range l.tasks {
		if old.ID != t.ID {
			rest = append(rest, old)
		}
	}
	l.tasks = append([]service.Task{t}, rest...)
}

// Replace swaps the entry with t.ID for t. It reports whether one was found.
func (l *List) Replace(t service.Task) bool {
	i := l.index(t.ID)
	if i < 0 {
		return false
	}
	l.tasks[i] = t
	return true
}

// Remove drops the entry with id.
func (l *List) Remove(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
	return true
}

// SetCompleted sets the completed flag of id.
func (l *List) SetCompleted(id string, completed bool) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.tasks[i].Completed = completed
	return true
}

// RemoveCompleted drops completed tasks, keeping the others in order.
// It returns the number removed.
func (l *List) RemoveCompleted() int {
	kept := l.tasks[:0]
	removed := 0
	for _, t := range l.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	l.tasks = kept
	return removed
}

// At returns the task at 1-based row n.
func (l *List) At(n int) (service.Task, bool) {
	if n < 1 || n > len(l.tasks) {
		return service.Task{}, false
	}
	return l.tasks[n-1], true
}

// Find returns the task with id.
func (l *List) Find(id string) (service.Task, bool) {
	i := l.index(id)
	if i < 0 {
		return service.Task{}, false
	}
	return l.tasks[i], true
}

func (l *List) index(id string) int {
	for i, t := range l.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Load reads a List saved by Save. A missing file yields an empty list.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &List{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task cache: %w", err)
	}
	var tasks []service.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("invalid task cache %s: %w", path, err)
	}
	return New(tasks), nil
}

// Save writes the list to path atomically.
func (l *List) Save(path string) error {
	data, err := json.MarshalIndent(l.Tasks(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("failed to write task cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write task cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write task cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write task cache: %w", err)
	}
	return nil
}
