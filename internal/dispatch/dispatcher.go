// Package dispatch validates operator input and sends command envelopes.
package dispatch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Remote/internal/core"
	"github.com/dkeye/Remote/internal/protocol"
)

var (
	errMissing       = errors.New("required")
	errUnknownAction = errors.New("unknown action")
	errUnexpected    = errors.New("not accepted by this action")
)

// WalkInput carries the raw form text for a walk command.
type WalkInput struct {
	Steps     string
	Speed     string
	Direction string
}

// ActionInput carries an action name and its raw argument text.
type ActionInput struct {
	Action string
	Args   map[string]string
}

// Dispatcher builds envelopes and hands them to a core.Sender. It never
// changes connection state.
type Dispatcher struct {
	ids protocol.IDGenerator
}

func New() *Dispatcher {
	return &Dispatcher{}
}

// SendWalkCommand sends self.zeri.action with action "walk".
func (d *Dispatcher) SendWalkCommand(conn core.Sender, in WalkInput) error {
	return d.SendAction(conn, ActionInput{
		Action: protocol.ActionWalk,
		Args: map[string]string{
			protocol.ArgSteps:     in.Steps,
			protocol.ArgSpeed:     in.Speed,
			protocol.ArgDirection: in.Direction,
		},
	})
}

// SendAction validates in against the action table and sends it.
func (d *Dispatcher) SendAction(conn core.Sender, in ActionInput) error {
	if conn == nil || !conn.IsReady() {
		return &Error{Kind: KindNotReady}
	}

	name := strings.TrimSpace(in.Action)
	spec, ok := protocol.LookupAction(name)
	if !ok {
		return &Error{Kind: KindInvalidArgument, Field: protocol.ArgAction, Value: in.Action, Err: errUnknownAction}
	}

	args := make(map[string]any, len(spec.Fields)+1)
	args[protocol.ArgAction] = spec.Name
	for _, field := range spec.Fields {
		raw, ok := in.Args[field]
		if !ok {
			return &Error{Kind: KindInvalidArgument, Field: field, Err: errMissing}
		}
		n, err := parseInt(raw)
		if err != nil {
			return &Error{Kind: KindInvalidArgument, Field: field, Value: raw, Err: err}
		}
		args[field] = n
	}
	for field := range in.Args {
		if !spec.Accepts(field) {
			return &Error{Kind: KindInvalidArgument, Field: field, Value: in.Args[field], Err: errUnexpected}
		}
	}

	return d.send(conn, protocol.ToolAction, args)
}

// SendTool sends an arbitrary tool call by name. Arguments are passed through
// as given.
func (d *Dispatcher) SendTool(conn core.Sender, name string, args map[string]any) error {
	if conn == nil || !conn.IsReady() {
		return &Error{Kind: KindNotReady}
	}
	if strings.TrimSpace(name) == "" {
		return &Error{Kind: KindInvalidArgument, Field: "name", Err: errMissing}
	}
	return d.send(conn, name, args)
}

func (d *Dispatcher) send(conn core.Sender, tool string, args map[string]any) error {
	id := d.ids.Next()
	req := protocol.NewToolCall(id, tool, args)
	data, err := protocol.Encode(req)
	if err != nil {
		return &Error{Kind: KindInvalidArgument, Err: fmt.Errorf("marshal request: %w", err)}
	}
	if err := conn.Send(data); err != nil {
		log.Error().Err(err).Str("module", "dispatch").Str("tool", tool).Msg("send failed")
		if errors.Is(err, core.ErrNotOpen) {
			return &Error{Kind: KindNotReady, Err: err}
		}
		return &Error{Kind: KindTransport, Err: err}
	}
	log.Info().Str("module", "dispatch").Str("tool", tool).Int64("id", id).RawJSON("request", data).Msg("sent")
	return nil
}

func parseInt(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errMissing
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			return 0, ne.Err
		}
		return 0, err
	}
	return n, nil
}
