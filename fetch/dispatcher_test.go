package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeEngine is a scripted Engine for dispatcher tests.
type fakeEngine struct {
	name  string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Fetch(ctx context.Context, req *Request) (*Result, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Result{
		HTML:       "<html></html>",
		StatusCode: 200,
		FinalURL:   req.URL,
		EngineName: f.name,
	}, nil
}

func newTestDispatcher(t *testing.T, engines []Engine, delays []time.Duration) (*Dispatcher, *DomainMemory) {
	t.Helper()
	memory := NewDomainMemory(time.Hour)
	t.Cleanup(memory.Stop)
	return NewDispatcher(engines, delays, memory), memory
}

func TestDispatch_FirstEngineWins(t *testing.T) {
	fast := &fakeEngine{name: "fast"}
	slow := &fakeEngine{name: "slow"}
	d, _ := newTestDispatcher(t, []Engine{fast, slow}, []time.Duration{0, time.Second})

	result, err := d.Dispatch(context.Background(), &Request{URL: "https://example.com/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EngineName != "fast" {
		t.Errorf("winner = %s, want fast", result.EngineName)
	}
	if slow.calls.Load() != 0 {
		t.Error("delayed engine should never have started")
	}
}

func TestDispatch_EscalatesOnFailure(t *testing.T) {
	blocked := &fakeEngine{name: "blocked", err: errors.New("blocked with status 403")}
	fallback := &fakeEngine{name: "fallback"}
	d, _ := newTestDispatcher(t, []Engine{blocked, fallback}, []time.Duration{0, 10 * time.Millisecond})

	result, err := d.Dispatch(context.Background(), &Request{URL: "https://example.com/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EngineName != "fallback" {
		t.Errorf("winner = %s, want fallback", result.EngineName)
	}
}

func TestDispatch_AllEnginesFail(t *testing.T) {
	a := &fakeEngine{name: "a", err: errors.New("down")}
	b := &fakeEngine{name: "b", err: errors.New("also down")}
	d, _ := newTestDispatcher(t, []Engine{a, b}, []time.Duration{0, 0})

	_, err := d.Dispatch(context.Background(), &Request{URL: "https://example.com/"})
	if err == nil {
		t.Fatal("expected an error when every engine fails")
	}
}

func TestDispatch_RemembersWinningEngine(t *testing.T) {
	failing := &fakeEngine{name: "failing", err: errors.New("nope")}
	working := &fakeEngine{name: "working"}
	d, memory := newTestDispatcher(t, []Engine{failing, working}, []time.Duration{0, 5 * time.Millisecond})

	if _, err := d.Dispatch(context.Background(), &Request{URL: "https://example.com/a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := memory.Get("example.com"); got != "working" {
		t.Fatalf("memory = %q, want working", got)
	}

	// The second dispatch for the same domain goes straight to the winner.
	failing.calls.Store(0)
	if _, err := d.Dispatch(context.Background(), &Request{URL: "https://example.com/b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failing.calls.Load() != 0 {
		t.Error("remembered engine should bypass the race")
	}
}

func TestDispatch_ForgetsFailedMemory(t *testing.T) {
	flaky := &fakeEngine{name: "flaky", err: errors.New("down now")}
	backup := &fakeEngine{name: "backup"}
	d, memory := newTestDispatcher(t, []Engine{flaky, backup}, []time.Duration{0, 0})

	memory.Set("example.com", "flaky")
	result, err := d.Dispatch(context.Background(), &Request{URL: "https://example.com/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EngineName != "backup" {
		t.Errorf("winner = %s, want backup", result.EngineName)
	}
	if got := memory.Get("example.com"); got != "backup" {
		t.Errorf("memory = %q, want backup", got)
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/path", "example.com"},
		{"http://example.com:8080/", "example.com"},
		{"https://sub.example.com", "sub.example.com"},
	}
	for _, tt := range tests {
		if got := extractDomain(tt.url); got != tt.want {
			t.Errorf("extractDomain(%s) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
