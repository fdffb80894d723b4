// Package httpnotify provides an HTTP-driven value notifier. Each
// request method performs exactly one attempt and broadcasts the
// outcome — the response on success, the error value on failure — to
// the notifier's listeners. Retry and backoff policy belong to the
// caller.
package httpnotify

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/go-drift/notify/pkg/errors"
	"github.com/go-drift/notify/pkg/notify"
)

// Response is the broadcast value for a completed request.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Header holds the response headers.
	Header http.Header
	// Body is the fully read response body.
	Body []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON extracts the value at a gjson path from the body,
// e.g. resp.JSON("items.0.name").
func (r *Response) JSON(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// HTTPNotifier issues single-attempt HTTP requests and broadcasts
// each outcome as a value. The buffered value after a call is the
// *Response (for Get/Head/Delete/Post/Put/Patch), the body (for
// Read/ReadBytes), or the error value when the attempt failed.
type HTTPNotifier struct {
	*notify.ValNotifier[any]

	// Client issues the requests. Defaults to http.DefaultClient.
	Client *http.Client
}

// New creates an HTTP notifier with the default client.
func New(opts *notify.Options) (*HTTPNotifier, error) {
	v, err := notify.NewVal[any](opts)
	if err != nil {
		return nil, err
	}
	return &HTTPNotifier{ValNotifier: v}, nil
}

// Get performs a GET request and broadcasts the *Response.
func (h *HTTPNotifier) Get(ctx context.Context, url string, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.Get", http.MethodGet, url, nil, header, nil)
}

// Head performs a HEAD request and broadcasts the *Response.
func (h *HTTPNotifier) Head(ctx context.Context, url string, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.Head", http.MethodHead, url, nil, header, nil)
}

// Delete performs a DELETE request and broadcasts the *Response.
func (h *HTTPNotifier) Delete(ctx context.Context, url string, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.Delete", http.MethodDelete, url, nil, header, nil)
}

// Post performs a POST request with body and broadcasts the *Response.
func (h *HTTPNotifier) Post(ctx context.Context, url string, body []byte, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.Post", http.MethodPost, url, body, header, nil)
}

// Put performs a PUT request with body and broadcasts the *Response.
func (h *HTTPNotifier) Put(ctx context.Context, url string, body []byte, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.Put", http.MethodPut, url, body, header, nil)
}

// Patch performs a PATCH request with body and broadcasts the *Response.
func (h *HTTPNotifier) Patch(ctx context.Context, url string, body []byte, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.Patch", http.MethodPatch, url, body, header, nil)
}

// Read performs a GET request and broadcasts the body as a string.
func (h *HTTPNotifier) Read(ctx context.Context, url string, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.Read", http.MethodGet, url, nil, header, func(r *Response) any {
		return r.Text()
	})
}

// ReadBytes performs a GET request and broadcasts the body bytes.
func (h *HTTPNotifier) ReadBytes(ctx context.Context, url string, header http.Header) (any, error) {
	return h.do(ctx, "httpnotify.ReadBytes", http.MethodGet, url, nil, header, func(r *Response) any {
		return r.Body
	})
}

func (h *HTTPNotifier) do(ctx context.Context, op, method, url string, body []byte, header http.Header, transform func(*Response) any) (any, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return h.broadcastFailure(op, err)
	}
	for key, vals := range header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	// Exactly one attempt per call.
	resp, err := client.Do(req)
	if err != nil {
		return h.broadcastFailure(op, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return h.broadcastFailure(op, err)
	}
	r := &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}
	value := any(r)
	if transform != nil {
		value = transform(r)
	}
	if err := h.CallWith(value); err != nil {
		return value, err
	}
	return value, nil
}

// broadcastFailure broadcasts the error as the value, so listeners
// observe failed attempts too, then returns it.
func (h *HTTPNotifier) broadcastFailure(op string, cause error) (any, error) {
	failure := &errors.NotifyError{Op: op, Kind: errors.KindHTTP, Err: cause}
	if err := h.CallWith(failure); err != nil {
		return failure, err
	}
	return failure, failure
}
