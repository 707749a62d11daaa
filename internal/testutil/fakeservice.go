// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"todoctl/internal/api"
	"todoctl/internal/service"
)

// ErrNotFound is what FakeService returns for an unknown task ID.
var ErrNotFound = &api.StatusError{StatusCode: http.StatusNotFound, Message: "Task not found"}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task // newest first
	nextID int
	authed bool
	closed bool

	// Users maps username to password for Login.
	Users map[string]string

	// ToggleEmpty makes ToggleTask confirm without returning the task.
	ToggleEmpty bool

	// Error injection for testing
	RegisterErr        error
	LoginErr           error
	LogoutErr          error
	ListTasksErr       error
	GetTaskErr         error
	CreateTaskErr      error
	UpdateTaskErr      error
	ToggleTaskErr      error
	DeleteTaskErr      error
	DeleteCompletedErr error
	StatsErr           error
}

// NewFakeService creates a FakeService that is logged in with no tasks.
func NewFakeService() *FakeService {
	return &FakeService{authed: true, Users: make(map[string]string)}
}

// SetAuthenticated sets the session state.
func (f *FakeService) SetAuthenticated(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authed = v
}

// AddTask adds a task at the bottom of the list and returns its ID.
func (f *FakeService) AddTask(title string, completed bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Completed: completed})
	return id
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Closed reports whether Close was called.
func (f *FakeService) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

func (f *FakeService) newID() string {
	f.nextID++
	return fmt.Sprintf("t%d", f.nextID)
}

func (f *FakeService) index(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, username, password string) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Users[username]; ok {
		return &api.StatusError{StatusCode: http.StatusConflict, Message: "User already exists"}
	}
	f.Users[username] = password
	f.authed = true
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) error {
	if f.LoginErr != nil {
		return f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.Users[username]; !ok || pw != password {
		return &api.StatusError{StatusCode: http.StatusUnauthorized, Message: "Incorrect password"}
	}
	f.authed = true
	return nil
}

// Logout implements service.Service.
func (f *FakeService) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authed = false
	return f.LogoutErr
}

// Authenticated implements service.Service.
func (f *FakeService) Authenticated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.authed
}

// Status implements service.Service.
func (f *FakeService) Status(ctx context.Context) (service.Status, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return service.Status{Authenticated: f.authed, Server: "http://fake", HasRefresh: f.authed}, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id string) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.index(id)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	return f.tasks[i], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: f.newID(), Title: in.Title, Description: in.Description}
	f.tasks = append([]service.Task{t}, f.tasks...)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	f.tasks[i].Title = in.Title
	f.tasks[i].Description = in.Description
	return f.tasks[i], nil
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id string) (service.Task, bool, error) {
	if f.ToggleTaskErr != nil {
		return service.Task{}, false, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return service.Task{}, false, ErrNotFound
	}
	f.tasks[i].Completed = !f.tasks[i].Completed
	if f.ToggleEmpty {
		return service.Task{}, false, nil
	}
	return f.tasks[i], true, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// DeleteCompleted implements service.Service.
func (f *FakeService) DeleteCompleted(ctx context.Context) (string, error) {
	if f.DeleteCompletedErr != nil {
		return "", f.DeleteCompletedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []service.Task
	for _, t := range f.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	n := len(f.tasks) - len(kept)
	f.tasks = kept
	return fmt.Sprintf("%d completed todos deleted", n), nil
}

// Stats implements service.Service.
func (f *FakeService) Stats(ctx context.Context) (service.Stats, error) {
	if f.StatsErr != nil {
		return service.Stats{}, f.StatsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var st service.Stats
	for _, t := range f.tasks {
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st, nil
}

// Close implements service.Service.
func (f *FakeService) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
