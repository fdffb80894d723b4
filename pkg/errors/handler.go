package errors

import (
	"runtime"
	"strings"
	"sync"
	"time"
)

// Handler receives diagnostics reported by the notify library.
type Handler interface {
	// HandleError is called for a reported structural error.
	HandleError(err *NotifyError)
	// HandleListenerError is called for a reported listener failure.
	HandleListenerError(err *ListenerError)
}

var (
	// DefaultHandler is the global diagnostics handler.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler Handler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global diagnostics handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

// getHandler returns the current diagnostics handler.
func getHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *NotifyError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleError(err)
	}
}

// ReportListener sends a listener failure to the global handler.
func ReportListener(err *ListenerError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleListenerError(err)
	}
}

// Stack returns the current goroutine's stack trace, trimmed of the
// runtime frames that captured it.
func Stack() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	trace := string(buf[:n])
	if idx := strings.Index(trace, "\n"); idx >= 0 {
		return trace[idx+1:]
	}
	return trace
}
