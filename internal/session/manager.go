// Package session owns the single robot connection and its lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Remote/internal/core"
	"github.com/dkeye/Remote/internal/domain"
	"github.com/dkeye/Remote/internal/events"
)

var (
	ErrNotOpen      = core.ErrNotOpen
	ErrBackpressure = errors.New("backpressure")
)

type Options struct {
	DefaultPort int
	Path        string
	DialTimeout time.Duration
	SendBuffer  int
}

func DefaultOptions() Options {
	return Options{
		DefaultPort: domain.DefaultPort,
		Path:        domain.DefaultPath,
		DialTimeout: 10 * time.Second,
		SendBuffer:  32,
	}
}

// Manager is the connection manager. At most one session is active; a new
// Connect tears the previous one down before dialing.
type Manager struct {
	dialer core.Dialer
	opts   Options
	bus    *events.Bus
	now    func() time.Time

	mu      sync.Mutex
	state   domain.ConnState
	current *conn
	history []domain.Event
}

func NewManager(dialer core.Dialer, opts Options) *Manager {
	def := DefaultOptions()
	if opts.DefaultPort <= 0 {
		opts.DefaultPort = def.DefaultPort
	}
	if opts.Path == "" {
		opts.Path = def.Path
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	return &Manager{
		dialer: dialer,
		opts:   opts,
		bus:    events.NewBus(),
		now:    time.Now,
		state:  domain.StateIdle,
	}
}

// Connect starts an asynchronous connect attempt. Failures are reported as
// error events, never returned.
func (m *Manager) Connect(address string) {
	ep, err := domain.ParseEndpoint(address, m.opts.DefaultPort, m.opts.Path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.emitLocked(domain.EventError, "", nil, fmt.Sprintf("configuration error: %v", err))
		return
	}

	if m.state.Active() {
		m.teardownLocked("replaced by new connection")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		id:       uuid.NewString(),
		endpoint: ep,
		ctx:      ctx,
		cancel:   cancel,
		send:     make(chan core.Frame, m.opts.SendBuffer),
	}
	m.current = c
	m.state = domain.StateConnecting
	m.emitLocked(domain.EventConnecting, c.id, nil, "connecting to "+ep.URL())

	go m.dial(c)
}

// Disconnect closes the active session. From Failed it settles to Closed,
// from Idle or Closed it does nothing.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.state.Active():
		m.teardownLocked("disconnected")
	case m.state == domain.StateFailed:
		m.state = domain.StateClosed
		m.emitLocked(domain.EventClosed, "", nil, "connection reset")
	}
}

func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == domain.StateOpen
}

func (m *Manager) State() domain.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID of the active session, empty when none.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.id
}

// Endpoint of the active session.
func (m *Manager) Endpoint() (domain.Endpoint, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.Endpoint{}, false
	}
	return m.current.endpoint, true
}

// OnEvent subscribes h to the event stream.
func (m *Manager) OnEvent(h events.Handler) (unsubscribe func()) {
	return m.bus.Subscribe(h)
}

// History returns a copy of the event log.
func (m *Manager) History() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.history))
	copy(out, m.history)
	return out
}

// Send queues a text frame for the write pump.
func (m *Manager) Send(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != domain.StateOpen || m.current == nil {
		return ErrNotOpen
	}
	select {
	case m.current.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close disconnects and ends the event stream.
func (m *Manager) Close() {
	m.Disconnect()
	m.bus.Close()
}

func (m *Manager) dial(c *conn) {
	ctx, cancel := context.WithTimeout(c.ctx, m.opts.DialTimeout)
	t, err := m.dialer.Dial(ctx, c.endpoint.URL())
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != c {
		// superseded or disconnected while dialing
		if t != nil {
			_ = t.Close()
		}
		return
	}
	if err != nil {
		m.current = nil
		c.shutdown()
		m.state = domain.StateFailed
		m.emitLocked(domain.EventError, c.id, nil, fmt.Sprintf("transport error: %v", err))
		return
	}

	c.transport = t
	m.state = domain.StateOpen
	m.emitLocked(domain.EventOpened, c.id, nil, "connected to "+c.endpoint.URL())

	go m.writePump(c)
	go m.readPump(c)
}

func (m *Manager) readPump(c *conn) {
	for {
		data, err := c.transport.ReadMessage()
		if err != nil {
			m.transportDown(c, err)
			return
		}
		m.mu.Lock()
		if m.current != c {
			m.mu.Unlock()
			return
		}
		m.emitLocked(domain.EventMessage, c.id, data, "recv: "+string(data))
		m.mu.Unlock()
	}
}

func (m *Manager) writePump(c *conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case f := <-c.send:
			if err := c.transport.WriteMessage(f); err != nil {
				m.transportDown(c, err)
				return
			}
		}
	}
}

func (m *Manager) transportDown(c *conn, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != c {
		return
	}
	m.current = nil
	c.shutdown()

	if errors.Is(err, core.ErrClosed) {
		m.state = domain.StateClosed
		m.emitLocked(domain.EventClosed, c.id, nil, fmt.Sprintf("connection closed: %v", err))
		return
	}
	m.state = domain.StateFailed
	m.emitLocked(domain.EventError, c.id, nil, fmt.Sprintf("transport error: %v", err))
}

func (m *Manager) teardownLocked(reason string) {
	c := m.current
	m.current = nil
	m.state = domain.StateClosed
	id := ""
	if c != nil {
		c.shutdown()
		id = c.id
	}
	m.emitLocked(domain.EventClosed, id, nil, "connection closed: "+reason)
}

// emitLocked appends to the log and publishes; callers hold m.mu so the
// publish order matches the order of state changes.
func (m *Manager) emitLocked(kind domain.EventKind, sid string, data []byte, msg string) {
	e := domain.Event{
		Kind:      kind,
		State:     m.state,
		SessionID: sid,
		Message:   msg,
		Data:      data,
		At:        m.now(),
	}
	m.history = append(m.history, e)
	m.bus.Publish(e)

	level := zerolog.InfoLevel
	switch kind {
	case domain.EventError:
		level = zerolog.WarnLevel
	case domain.EventMessage:
		level = zerolog.DebugLevel
	}
	log.WithLevel(level).Str("module", "session").Str("sid", sid).Str("event", kind.String()).Str("state", m.state.String()).Msg(msg)
}
