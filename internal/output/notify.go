package output

import (
	"fmt"
	"io"
)

// Notifier prints short confirmation messages tied to an anchor.
type Notifier struct {
	w     io.Writer
	quiet bool
}

// NewNotifier creates a Notifier writing to w. Quiet notifiers print nothing.
func NewNotifier(w io.Writer, quiet bool) *Notifier {
	return &Notifier{w: w, quiet: quiet}
}

// Notify writes "anchor: text".
func (n *Notifier) Notify(anchor, text string) {
	if n.quiet {
		return
	}
	if anchor == "" {
		fmt.Fprintln(n.w, text)
		return
	}
	fmt.Fprintf(n.w, "%s: %s\n", anchor, text)
}
