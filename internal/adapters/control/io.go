package control

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Remote/internal/app"
	"github.com/dkeye/Remote/internal/protocol"
)

func (ctl *ControlWSController) writePump(ctx context.Context, c *WsControlConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "control").Msg("writePump ctx done")
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Error().Err(err).Str("module", "control").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "control").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "control").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "control").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *ControlWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid app.SessionID, c *WsControlConn) {
	defer func() {
		log.Info().Str("module", "control").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.limiter.Forget(sid)
		ctl.Registry.Unbind(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "control").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Info().Str("module", "control").Str("sid", string(sid)).Msg("readPump peer closed")
				} else {
					log.Error().Err(err).Str("module", "control").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleMessage(sid, c, data)
		}
	}
}

func (ctl *ControlWSController) handleMessage(sid app.SessionID, c *WsControlConn, data []byte) {
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "control").Str("sid", string(sid)).Msg("rate limited")
		ctl.sendJSON(c, protocol.NewErrorResponse(requestID(data), protocol.CodeRateLimited, "rate limited"))
		return
	}

	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		log.Error().Err(err).Str("module", "control").Msg("bad json")
		ctl.sendJSON(c, protocol.NewErrorResponse(nil, protocol.CodeParseError, "parse error"))
		return
	}
	if req.JSONRPC != protocol.Version {
		ctl.reply(c, req.ID, protocol.NewErrorResponse(req.ID, protocol.CodeInvalidRequest, "invalid request"))
		return
	}

	switch req.Method {
	case protocol.MethodToolsCall:
		ctl.Registry.CountCommand(sid)
		ctl.reply(c, req.ID, ctl.handleToolCall(sid, &req))
	default:
		log.Warn().Str("module", "control").Str("method", req.Method).Msg("unknown method")
		ctl.reply(c, req.ID, protocol.NewErrorResponse(req.ID, protocol.CodeMethodNotFound, "method not found: "+req.Method))
	}
}

// reply skips notifications, which carry no id.
func (ctl *ControlWSController) reply(c *WsControlConn, id any, resp *protocol.Response) {
	if id == nil {
		return
	}
	ctl.sendJSON(c, resp)
}

func (ctl *ControlWSController) sendJSON(c *WsControlConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "control").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "control").Msg("sendJSON dropped")
	}
}

// requestID digs the id out of a frame that was not otherwise decoded.
func requestID(data []byte) any {
	var env struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	return env.ID
}
