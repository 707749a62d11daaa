package service

import "time"

// Task is a single to-do item. The backend names the ID "_id".
type Task struct {
	ID          string `json:"_id"`
	UserID      string `json:"user_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Stats summarises the user's tasks.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Status describes the local login state.
type Status struct {
	Authenticated bool
	Server        string
	HasRefresh    bool

	// Subject and ExpiresAt are decoded from the access token when it is a JWT.
	Subject   string
	ExpiresAt time.Time
}
