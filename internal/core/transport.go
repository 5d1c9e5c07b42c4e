package core

import (
	"context"
	"errors"
)

// Frame is a raw text payload.
type Frame []byte

// ErrClosed marks a transport that ended with a close handshake or EOF,
// as opposed to a network or protocol failure.
var ErrClosed = errors.New("transport closed")

// ErrNotOpen is returned by Sender.Send when no connection is open.
var ErrNotOpen = errors.New("connection not open")

// Transport abstracts a connected, message framed socket.
// Owned by the session manager; nothing else may Close() it.
type Transport interface {
	ReadMessage() (Frame, error)
	WriteMessage(Frame) error
	Close() error
}

// Dialer opens a Transport to a ws:// URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}

// Sender is the part of a connection the command dispatcher may use.
// It can check readiness and request transmission, never close or reopen.
type Sender interface {
	IsReady() bool
	Send(Frame) error
}
