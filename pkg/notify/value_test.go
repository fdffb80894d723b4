package notify

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/go-drift/notify/pkg/errors"
)

func mustNewVal[T any](t *testing.T, opts *Options) *ValNotifier[T] {
	t.Helper()
	v, err := NewVal[T](opts)
	if err != nil {
		t.Fatalf("NewVal: %v", err)
	}
	return v
}

func TestCallWith_BuffersAndReplays(t *testing.T) {
	v := mustNewVal[int](t, nil)
	var seen []int
	if _, err := v.AddValueListener(func(val int) { seen = append(seen, val) }); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}

	if err := v.CallWith(5); err != nil {
		t.Fatalf("CallWith: %v", err)
	}
	if val, ok := v.Val(); !ok || val != 5 {
		t.Fatalf("Val = %d, %v; want 5, true", val, ok)
	}

	// Argument-less Call replays the buffer.
	if err := v.Call(); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(seen) != 2 || seen[0] != 5 || seen[1] != 5 {
		t.Errorf("seen = %v, want [5 5]", seen)
	}
}

func TestCallWith_OverwritesBuffer(t *testing.T) {
	v, err := NewValWith(0, nil)
	if err != nil {
		t.Fatalf("NewValWith: %v", err)
	}
	var seen []int
	if _, err := v.AddValueListener(func(val int) { seen = append(seen, val) }); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}

	if err := v.CallWith(10); err != nil {
		t.Fatalf("CallWith: %v", err)
	}
	if val, _ := v.Val(); val != 10 {
		t.Errorf("Val = %d, want 10", val)
	}
	if err := v.Call(); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(seen) != 2 || seen[1] != 10 {
		t.Errorf("seen = %v, want replay of 10", seen)
	}
}

func TestCall_EmptyBufferBroadcastsNoValue(t *testing.T) {
	v := mustNewVal[int](t, nil)
	var raw any = "untouched"
	if _, err := v.AddListener(func(val any) { raw = val }); err != nil {
		t.Fatalf("AddListener: %v", err)
	}
	if err := v.Call(); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if raw != nil {
		t.Errorf("raw = %v, want nil for empty buffer", raw)
	}
}

func TestCallTransient_LeavesBuffer(t *testing.T) {
	v := mustNewVal[int](t, nil)
	var seen []int
	if _, err := v.AddValueListener(func(val int) { seen = append(seen, val) }); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}
	if err := v.CallWith(1); err != nil {
		t.Fatalf("CallWith: %v", err)
	}
	if err := v.CallTransient(99); err != nil {
		t.Fatalf("CallTransient: %v", err)
	}
	if val, _ := v.Val(); val != 1 {
		t.Errorf("Val = %d after transient call, want 1", val)
	}
	if len(seen) != 2 || seen[1] != 99 {
		t.Errorf("seen = %v, want transient 99 delivered", seen)
	}
}

func TestNullNotify_EmptiesBuffer(t *testing.T) {
	v := mustNewVal[int](t, nil)
	var last any = "untouched"
	if _, err := v.AddListener(func(val any) { last = val }); err != nil {
		t.Fatalf("AddListener: %v", err)
	}
	if err := v.CallWith(3); err != nil {
		t.Fatalf("CallWith: %v", err)
	}

	if err := v.NullNotify(); err != nil {
		t.Fatalf("NullNotify: %v", err)
	}
	if last != nil {
		t.Errorf("last = %v, want explicit nil", last)
	}
	if _, ok := v.Val(); ok {
		t.Error("Val present after NullNotify, want empty")
	}
}

func TestCallWith_BufferWrittenAfterBroadcast(t *testing.T) {
	// No policy: a failing listener halts the broadcast and the old
	// buffer must survive.
	v := mustNewVal[int](t, nil)
	if err := v.CallWith(1); err != nil {
		t.Fatalf("CallWith: %v", err)
	}
	if _, err := v.AddListener(func() error { return errors.Disposed("test") }); err != nil {
		t.Fatalf("AddListener: %v", err)
	}

	if err := v.CallWith(2); errors.KindOf(err) != errors.KindListener {
		t.Fatalf("CallWith error = %v, want listener failure", err)
	}
	if val, _ := v.Val(); val != 1 {
		t.Errorf("Val = %d after failed broadcast, want 1", val)
	}
}

func TestAddValueListener_ZeroValueForBareNotify(t *testing.T) {
	v := mustNewVal[int](t, nil)
	var seen []int
	if _, err := v.AddValueListener(func(val int) { seen = append(seen, val) }); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}
	if err := v.Notify(); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(seen) != 1 || seen[0] != 0 {
		t.Errorf("seen = %v, want [0]", seen)
	}
}

func TestAddValueListener_TypeMismatchIsListenerFailure(t *testing.T) {
	v := mustNewVal[int](t, nil)
	if _, err := v.AddValueListener(func(int) {}); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}
	if err := v.NotifyValue("not an int"); errors.KindOf(err) != errors.KindListener {
		t.Fatalf("NotifyValue error = %v, want listener failure", err)
	}
}

func TestAddValueListener_DuplicateRejected(t *testing.T) {
	v := mustNewVal[int](t, nil)
	fn := func(int) {}
	if _, err := v.AddValueListener(fn); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}
	if _, err := v.AddValueListener(fn); errors.KindOf(err) != errors.KindDuplicate {
		t.Fatalf("second AddValueListener error = %v, want duplicate", err)
	}
}

func TestLoad_BroadcastsProducedValue(t *testing.T) {
	v := mustNewVal[string](t, nil)
	var seen []string
	if _, err := v.AddValueListener(func(s string) { seen = append(seen, s) }); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}

	got, err := v.Load(context.Background(), func(context.Context) (string, error) {
		return "loaded", nil
	}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "loaded" {
		t.Errorf("Load = %q, want %q", got, "loaded")
	}
	if len(seen) != 1 || seen[0] != "loaded" {
		t.Errorf("seen = %v, want [loaded]", seen)
	}
	if val, _ := v.Val(); val != "loaded" {
		t.Errorf("Val = %q, want %q", val, "loaded")
	}
}

func TestLoad_RoutesFailure(t *testing.T) {
	v := mustNewVal[string](t, nil)
	calls := 0
	if _, err := v.AddValueListener(func(string) { calls++ }); err != nil {
		t.Fatalf("AddValueListener: %v", err)
	}

	produceErr := stderrors.New("fetch failed")
	var routed error
	_, err := v.Load(context.Background(), func(context.Context) (string, error) {
		return "", produceErr
	}, func(e error) { routed = e })
	if err != produceErr {
		t.Fatalf("Load error = %v, want %v", err, produceErr)
	}
	if routed != produceErr {
		t.Errorf("routed = %v, want %v", routed, produceErr)
	}
	if calls != 0 {
		t.Errorf("listener called %d times on failure, want 0", calls)
	}
}

func TestValNotifier_DisposeInitClearsBuffer(t *testing.T) {
	v, err := NewValWith(7, nil)
	if err != nil {
		t.Fatalf("NewValWith: %v", err)
	}
	if !v.Dispose() {
		t.Fatal("Dispose = false, want true")
	}
	if _, ok := v.Val(); ok {
		t.Error("Val present after dispose, want empty")
	}
	if err := v.Call(); !errors.IsDisposed(err) {
		t.Errorf("Call on disposed = %v, want disposed", err)
	}

	ok, err := v.Init(nil)
	if !ok || err != nil {
		t.Fatalf("Init = %v, %v; want true, nil", ok, err)
	}
	if _, present := v.Val(); present {
		t.Error("Val present after Init, want empty")
	}
	if err := v.CallWith(9); err != nil {
		t.Fatalf("CallWith after Init: %v", err)
	}
	if val, _ := v.Val(); val != 9 {
		t.Errorf("Val = %d, want 9", val)
	}
}
