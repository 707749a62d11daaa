// Package todos runs task operations against the backend and keeps the
// local task list in step with what the server confirmed.
//
// Every operation sends one request. The list is only changed after the
// request succeeds, so a failed operation leaves it as it was.
package todos

import (
	"context"
	"fmt"

	"todoctl/internal/service"
	"todoctl/internal/tasklist"
)

// Notifier shows a short message tied to an anchor, such as a command name.
type Notifier interface {
	Notify(anchor, text string)
}

// Edit holds the fields to change. Nil fields keep their current value.
type Edit struct {
	Title       *string
	Description *string
}

// Board pairs a service with the local task list.
type Board struct {
	svc    service.Service
	list   *tasklist.List
	notify Notifier
}

// New creates a Board. notify may be nil.
func New(svc service.Service, list *tasklist.List, notify Notifier) *Board {
	if list == nil {
		list = &tasklist.List{}
	}
	return &Board{svc: svc, list: list, notify: notify}
}

// Tasks returns the cached tasks in display order.
func (b *Board) Tasks() []service.Task {
	return b.list.Tasks()
}

// List returns the underlying task list.
func (b *Board) List() *tasklist.List {
	return b.list
}

// Sync fetches all tasks and replaces the list with them.
func (b *Board) Sync(ctx context.Context) ([]service.Task, error) {
	tasks, err := b.svc.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	b.list.Reset(tasks)
	return b.list.Tasks(), nil
}

// Get fetches one task and updates its cached entry.
func (b *Board) Get(ctx context.Context, id string) (service.Task, error) {
	task, err := b.svc.GetTask(ctx, id)
	if err != nil {
		return service.Task{}, err
	}
	b.list.Replace(task)
	return task, nil
}

// Create adds a task and puts it first in the list.
func (b *Board) Create(ctx context.Context, in service.TaskInput) (service.Task, error) {
	task, err := b.svc.CreateTask(ctx, in)
	if err != nil {
		return service.Task{}, err
	}
	b.list.Prepend(task)
	return task, nil
}

// Update changes a task's title and description. Fields not set in e are
// taken from the cached task, or fetched when the task is not cached.
func (b *Board) Update(ctx context.Context, id string, e Edit) (service.Task, error) {
	if e.Title == nil && e.Description == nil {
		return service.Task{}, fmt.Errorf("nothing to change")
	}

	var in service.TaskInput
	if e.Title == nil || e.Description == nil {
		current, ok := b.list.Find(id)
		if !ok {
			var err error
			if current, err = b.svc.GetTask(ctx, id); err != nil {
				return service.Task{}, err
			}
		}
		in = service.TaskInput{Title: current.Title, Description: current.Description}
	}
	if e.Title != nil {
		in.Title = *e.Title
	}
	if e.Description != nil {
		in.Description = *e.Description
	}

	task, err := b.svc.UpdateTask(ctx, id, in)
	if err != nil {
		return service.Task{}, err
	}
	b.list.Replace(task)
	return task, nil
}

// Toggle flips a task's completed flag. When the server does not return
// the task, the cached flag is flipped instead.
func (b *Board) Toggle(ctx context.Context, id string) (service.Task, error) {
	task, ok, err := b.svc.ToggleTask(ctx, id)
	if err != nil {
		return service.Task{}, err
	}
	if ok {
		if !b.list.SetCompleted(task.ID, task.Completed) {
			b.list.Replace(task)
		}
		return task, nil
	}

	cached, found := b.list.Find(id)
	if !found {
		return service.Task{ID: id}, nil
	}
	cached.Completed = !cached.Completed
	b.list.SetCompleted(id, cached.Completed)
	return cached, nil
}

// Delete removes a task.
func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.svc.DeleteTask(ctx, id); err != nil {
		return err
	}
	b.list.Remove(id)
	return nil
}

// DeleteCompleted removes all completed tasks and reports the server's
// message through the notifier.
func (b *Board) DeleteCompleted(ctx context.Context) (string, error) {
	msg, err := b.svc.DeleteCompleted(ctx)
	if err != nil {
		return "", err
	}
	removed := b.list.RemoveCompleted()
	if msg == "" {
		msg = fmt.Sprintf("%d completed todos deleted", removed)
	}
	if b.notify != nil {
		b.notify.Notify("purge", msg)
	}
	return msg, nil
}

// Stats returns the server's task counts.
func (b *Board) Stats(ctx context.Context) (service.Stats, error) {
	return b.svc.Stats(ctx)
}
