package ws

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Remote/internal/core"
)

type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadLimit        int64
}

// Dialer opens client WebSocket transports.
type Dialer struct {
	dialer *websocket.Dialer
	opts   Options
}

func NewDialer(opts Options) *Dialer {
	d := *websocket.DefaultDialer
	if opts.HandshakeTimeout > 0 {
		d.HandshakeTimeout = opts.HandshakeTimeout
	}
	return &Dialer{dialer: &d, opts: opts}
}

func (d *Dialer) Dial(ctx context.Context, url string) (core.Transport, error) {
	c, resp, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (http %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if d.opts.ReadLimit > 0 {
		c.SetReadLimit(d.opts.ReadLimit)
	}
	log.Debug().Str("module", "adapters.ws").Str("url", url).Str("remote", c.RemoteAddr().String()).Msg("dialed")
	return NewTransport(c, d.opts.WriteTimeout), nil
}
