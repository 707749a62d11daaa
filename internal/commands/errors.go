package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"todoctl/internal/api"
	"todoctl/internal/exitcode"
)

// reportBackendError prints err and returns the matching exit code.
func reportBackendError(errOut io.Writer, err error) int {
	var (
		se *api.StatusError
		ne net.Error
	)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintln(errOut, "error: session expired (run: todoctl login)")
		return exitcode.AuthError
	case errors.Is(err, api.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500:
		fmt.Fprintf(errOut, "error: %s\n", statusMessage(se))
		return exitcode.UserError
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.BackendError
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		fmt.Fprintln(errOut, "error: request timed out")
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

func statusMessage(se *api.StatusError) string {
	if se.Message != "" {
		return se.Message
	}
	return se.Error()
}
