package errors

import (
	"fmt"
	"os"
)

// LogHandler is a Handler that logs diagnostics to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleError logs a NotifyError to stderr.
func (h *LogHandler) HandleError(err *NotifyError) {
	if err == nil {
		return
	}
	if h.Verbose {
		fmt.Fprintf(os.Stderr, "[notify error] %s\n", err.Error())
	} else {
		fmt.Fprintf(os.Stderr, "[notify error] %s: %s\n", err.Op, err.Msg)
	}
}

// HandleListenerError logs a ListenerError to stderr.
func (h *LogHandler) HandleListenerError(err *ListenerError) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[notify listener error] %s\n", err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
	}
}
