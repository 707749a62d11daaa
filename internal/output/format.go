// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"todoctl/internal/service"
)

// FormatTask formats a task row.
// Format: "{N:>4}  [x] {TITLE}\n" with "[ ]" for open tasks.
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.Completed), normalizeTitle(task.Title))
}

// FormatTaskDetails prints every field of a task, one per line.
func FormatTaskDetails(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", status(task.Completed))
	if desc := strings.TrimSpace(task.Description); desc != "" {
		lines := strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n")
		fmt.Fprintf(w, "description: %s\n", lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "             %s\n", l)
		}
	}
}

// FormatStats prints task counts.
func FormatStats(w io.Writer, st service.Stats) {
	fmt.Fprintf(w, "total:     %d\n", st.Total)
	fmt.Fprintf(w, "completed: %d\n", st.Completed)
	fmt.Fprintf(w, "pending:   %d\n", st.Pending)
}

// FormatStatus prints the session state.
func FormatStatus(w io.Writer, st service.Status, now time.Time) {
	fmt.Fprintf(w, "server:  %s\n", st.Server)
	if !st.Authenticated {
		fmt.Fprintln(w, "session: not logged in")
		return
	}
	fmt.Fprintln(w, "session: logged in")
	if st.Subject != "" {
		fmt.Fprintf(w, "user:    %s\n", st.Subject)
	}
	if !st.ExpiresAt.IsZero() {
		state := "valid"
		if !now.Before(st.ExpiresAt) {
			state = "expired, will refresh"
		}
		fmt.Fprintf(w, "expires: %s (%s)\n", st.ExpiresAt.UTC().Format(time.RFC3339), state)
	}
	if !st.HasRefresh {
		fmt.Fprintln(w, "refresh: none")
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func status(done bool) string {
	if done {
		return "completed"
	}
	return "pending"
}

// normalizeTitle normalizes a task title for display.
// Empty or whitespace-only titles become "(untitled)" and newlines become spaces.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
