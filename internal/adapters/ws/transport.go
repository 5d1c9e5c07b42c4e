// Package ws adapts gorilla/websocket to core.Transport.
package ws

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkeye/Remote/internal/core"
)

// Conn is an indirection over *websocket.Conn to ease testing.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	WriteControl(mt int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Transport is a client side WebSocket endpoint. Writes are serialized;
// reads must come from a single goroutine.
type Transport struct {
	conn         Conn
	writeTimeout time.Duration

	wmu  sync.Mutex
	once sync.Once
}

func NewTransport(conn Conn, writeTimeout time.Duration) *Transport {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Transport{conn: conn, writeTimeout: writeTimeout}
}

// ReadMessage returns the next data frame. A close frame or EOF is reported
// as core.ErrClosed, anything else is returned as is.
func (t *Transport) ReadMessage() (core.Frame, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, classify(err)
	}
	return core.Frame(data), nil
}

func (t *Transport) WriteMessage(f core.Frame) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, f); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Close sends a normal closure frame and releases the socket.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		// WriteControl may run concurrently with WriteMessage.
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = t.conn.Close()
	})
	return err
}

func classify(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Text != "" {
			return fmt.Errorf("%w: code %d %s", core.ErrClosed, ce.Code, ce.Text)
		}
		return fmt.Errorf("%w: code %d", core.ErrClosed, ce.Code)
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: eof", core.ErrClosed)
	}
	return err
}
