// Package exitcode defines exit codes for the CLI.
package exitcode

// Exit codes shared by all commands.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, rejected request).
	UserError = 1

	// AuthError indicates a missing or expired session.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)
