package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Remote/internal/app"
	"github.com/dkeye/Remote/internal/app/robot"
	"github.com/dkeye/Remote/internal/protocol"
)

func (ctl *ControlWSController) handleToolCall(sid app.SessionID, req *protocol.Request) *protocol.Response {
	if req.Params == nil {
		return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "missing params")
	}
	log.Info().Str("module", "control").Str("sid", string(sid)).Str("tool", req.Params.Name).Msg("tools/call")

	switch req.Params.Name {
	case protocol.ToolAction:
		return ctl.handleAction(req)
	case protocol.ToolStatus:
		return protocol.NewResult(req.ID, ctl.Robot.Status())
	case protocol.ToolIPAddress:
		return protocol.NewResult(req.ID, ctl.opts.Host)
	default:
		return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "unknown tool: "+req.Params.Name)
	}
}

func (ctl *ControlWSController) handleAction(req *protocol.Request) *protocol.Response {
	args := req.Params.Arguments

	name := protocol.ActionWalk
	if raw, ok := args[protocol.ArgAction]; ok {
		s, ok := raw.(string)
		if !ok {
			return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "action must be a string")
		}
		name = s
	}

	ints := make(map[string]int, len(args))
	for _, key := range []string{protocol.ArgSteps, protocol.ArgSpeed, protocol.ArgDirection, protocol.ArgAmount} {
		raw, ok := args[key]
		if !ok {
			continue
		}
		n, err := toInt(raw)
		if err != nil {
			return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, fmt.Sprintf("%s: %v", key, err))
		}
		ints[key] = n
	}

	action, err := robot.NewAction(name, ints)
	if errors.Is(err, robot.ErrUnknownAction) {
		return protocol.NewResult(req.ID, "unknown action")
	}
	if err := ctl.Robot.Enqueue(action); err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.CodeBusy, err.Error())
	}
	return protocol.NewResult(req.ID, "true")
}

var errNotInteger = errors.New("not an integer")

func toInt(v any) (int, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errNotInteger
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errNotInteger
	}
	return int(f), nil
}
