package httpnotify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-drift/notify/pkg/errors"
)

func mustNew(t *testing.T) *HTTPNotifier {
	t.Helper()
	h, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestGet_BroadcastsResponse(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"name":"first"},{"name":"second"}]}`))
	}))
	defer srv.Close()

	h := mustNew(t)
	var got []any
	if _, err := h.AddListener(func(v any) { got = append(got, v) }); err != nil {
		t.Fatalf("AddListener: %v", err)
	}

	value, err := h.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want exactly 1", hits)
	}

	resp, ok := value.(*Response)
	if !ok {
		t.Fatalf("value = %T, want *Response", value)
	}
	if !resp.OK() || resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.Status)
	}
	if name := resp.JSON("items.1.name").String(); name != "second" {
		t.Errorf("JSON(items.1.name) = %q, want %q", name, "second")
	}

	if len(got) != 1 || got[0] != value {
		t.Errorf("broadcast = %v, want the returned response", got)
	}
	if buffered, ok := h.Val(); !ok || buffered != value {
		t.Errorf("Val = %v, %v; want buffered response", buffered, ok)
	}
}

func TestGet_ForwardsHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	h := mustNew(t)
	header := http.Header{}
	header.Set("Authorization", "Bearer token")
	if _, err := h.Get(context.Background(), srv.URL, header); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if auth != "Bearer token" {
		t.Errorf("Authorization = %q, want forwarded header", auth)
	}
}

func TestPost_SendsBody(t *testing.T) {
	var received []byte
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	h := mustNew(t)
	value, err := h.Post(context.Background(), srv.URL, []byte("payload"), nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if method != http.MethodPost {
		t.Errorf("method = %q, want POST", method)
	}
	if string(received) != "payload" {
		t.Errorf("body = %q, want %q", received, "payload")
	}
	if resp := value.(*Response); resp.Status != http.StatusCreated {
		t.Errorf("Status = %d, want 201", resp.Status)
	}
}

func TestRead_BroadcastsBodyString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	h := mustNew(t)
	value, err := h.Read(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if value != "hello" {
		t.Errorf("Read = %v, want %q", value, "hello")
	}

	raw, err := h.ReadBytes(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if body, ok := raw.([]byte); !ok || string(body) != "hello" {
		t.Errorf("ReadBytes = %v, want body bytes", raw)
	}
}

func TestGet_FailureBroadcastsError(t *testing.T) {
	h := mustNew(t)
	var got []any
	if _, err := h.AddListener(func(v any) { got = append(got, v) }); err != nil {
		t.Fatalf("AddListener: %v", err)
	}

	value, err := h.Get(context.Background(), "http://\x00invalid", nil)
	if err == nil {
		t.Fatal("Get with invalid URL succeeded, want error")
	}
	if errors.KindOf(err) != errors.KindHTTP {
		t.Errorf("KindOf = %v, want http", errors.KindOf(err))
	}
	// The failure is broadcast as the value, so listeners observe it.
	if len(got) != 1 || got[0] != value {
		t.Errorf("broadcast = %v, want the error value", got)
	}
	if _, ok := value.(*errors.NotifyError); !ok {
		t.Errorf("value = %T, want *errors.NotifyError", value)
	}
}

func TestGet_DisposedNotifierReturnsValueAndError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	h := mustNew(t)
	h.Dispose()
	value, err := h.Get(context.Background(), srv.URL, nil)
	if !errors.IsDisposed(err) {
		t.Fatalf("Get on disposed = %v, want disposed", err)
	}
	// The request itself succeeded; only the broadcast failed.
	if resp, ok := value.(*Response); !ok || resp.Status != http.StatusOK {
		t.Errorf("value = %v, want the fetched response", value)
	}
}
