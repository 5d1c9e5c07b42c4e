package session

import (
	"context"
	"sync"

	"github.com/dkeye/Remote/internal/core"
	"github.com/dkeye/Remote/internal/domain"
)

// conn is one socket session. transport is nil until the dial succeeds.
type conn struct {
	id        string
	endpoint  domain.Endpoint
	ctx       context.Context
	cancel    context.CancelFunc
	send      chan core.Frame
	transport core.Transport
	once      sync.Once
}

func (c *conn) shutdown() {
	c.once.Do(func() {
		c.cancel()
		if c.transport != nil {
			_ = c.transport.Close()
		}
	})
}
