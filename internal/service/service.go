// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// Commands never talk HTTP directly.
type Service interface {
	// Register creates an account and starts a session.
	Register(ctx context.Context, username, password string) error

	// Login exchanges credentials for tokens and starts a session.
	Login(ctx context.Context, username, password string) error

	// Logout clears stored tokens. It makes no network call.
	Logout(ctx context.Context) error

	// Authenticated reports whether an access token is stored.
	Authenticated() bool

	// Status reports the local session state.
	Status(ctx context.Context) (Status, error)

	// ListTasks returns all tasks in server order (newest first).
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id string) (Task, error)

	// CreateTask creates a task and returns it as stored by the server.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask replaces the title and description of a task.
	UpdateTask(ctx context.Context, id string, in TaskInput) (Task, error)

	// ToggleTask flips the completed flag. ok is false when the server
	// confirmed the toggle without returning the task.
	ToggleTask(ctx context.Context, id string) (task Task, ok bool, err error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// DeleteCompleted deletes all completed tasks and returns the server message.
	DeleteCompleted(ctx context.Context) (string, error)

	// Stats returns task counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the token store.
	Close() error
}
