package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Remote/internal/core"
	"github.com/dkeye/Remote/internal/domain"
)

const waitTimeout = 2 * time.Second

type readResult struct {
	frame core.Frame
	err   error
}

// fakeTransport delivers whatever is pushed into reads and records writes.
type fakeTransport struct {
	reads    chan readResult
	closedCh chan struct{}
	once     sync.Once

	mu       sync.Mutex
	written  []core.Frame
	writeErr error
	closes   int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		reads:    make(chan readResult, 16),
		closedCh: make(chan struct{}),
	}
}

func (t *fakeTransport) ReadMessage() (core.Frame, error) {
	select {
	case r := <-t.reads:
		return r.frame, r.err
	case <-t.closedCh:
		return nil, errors.New("use of closed network connection")
	}
}

func (t *fakeTransport) WriteMessage(f core.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.writeErr != nil {
		return t.writeErr
	}
	t.written = append(t.written, f)
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closes++
	t.mu.Unlock()
	t.once.Do(func() { close(t.closedCh) })
	return nil
}

func (t *fakeTransport) isClosed() bool {
	select {
	case <-t.closedCh:
		return true
	default:
		return false
	}
}

func (t *fakeTransport) frames() []core.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]core.Frame, len(t.written))
	copy(out, t.written)
	return out
}

// fakeDialer returns queued transports or errors in order. When hold is set
// Dial blocks until release is closed or ctx ends.
type fakeDialer struct {
	mu      sync.Mutex
	results []dialResult
	urls    []string
	hold    chan struct{}
}

type dialResult struct {
	t   *fakeTransport
	err error
}

func (d *fakeDialer) push(t *fakeTransport, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, dialResult{t: t, err: err})
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (core.Transport, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	var r dialResult
	if len(d.results) > 0 {
		r = d.results[0]
		d.results = d.results[1:]
	} else {
		r.err = errors.New("connection refused")
	}
	hold := d.hold
	d.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.t, nil
}

func (d *fakeDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}

// recorder collects events delivered to a subscriber.
type recorder struct {
	ch chan domain.Event

	mu  sync.Mutex
	all []domain.Event
}

func record(t *testing.T, m *Manager) *recorder {
	t.Helper()
	r := &recorder{ch: make(chan domain.Event, 64)}
	unsubscribe := m.OnEvent(func(e domain.Event) {
		r.mu.Lock()
		r.all = append(r.all, e)
		r.mu.Unlock()
		r.ch <- e
	})
	t.Cleanup(unsubscribe)
	return r
}

// waitFor consumes events until one of kind arrives.
func (r *recorder) waitFor(t *testing.T, kind domain.EventKind) domain.Event {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case e := <-r.ch:
			if e.Kind == kind {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func (r *recorder) kinds() []domain.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventKind, 0, len(r.all))
	for _, e := range r.all {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recorder) count(kind domain.EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func newTestManager(d core.Dialer) *Manager {
	m := NewManager(d, Options{DialTimeout: time.Second, SendBuffer: 4})
	return m
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
