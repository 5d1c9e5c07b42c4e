// Package console is the terminal front end of the remote: it turns typed
// lines into Connection Manager and Dispatcher calls.
package console

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/dkeye/Remote/internal/core"
	"github.com/dkeye/Remote/internal/dispatch"
	"github.com/dkeye/Remote/internal/domain"
	"github.com/dkeye/Remote/internal/protocol"
)

// Connection is what the console needs from the connection manager.
type Connection interface {
	core.Sender
	Connect(address string)
	Disconnect()
	State() domain.ConnState
}

type Console struct {
	conn Connection
	disp *dispatch.Dispatcher
	out  *Output

	errColor  *color.Color
	infoColor *color.Color
}

func New(conn Connection, disp *dispatch.Dispatcher, out *Output) *Console {
	return &Console{
		conn:      conn,
		disp:      disp,
		out:       out,
		errColor:  color.New(color.FgRed),
		infoColor: color.New(color.FgHiBlack),
	}
}

const usage = `commands:
  connect <ip[:port]>                 open the robot connection
  disconnect                          close it
  status                              show connection state
  walk <steps> <speed> <direction>    direction 1 forward, -1 back
  turn <steps> <speed> <direction>
  swing <steps> <speed> <amount>
  shake_tail <steps> <speed> <amount>
  sit | home
  robot-status | ip                   query the robot
  help | quit`

// Exec runs one input line. It reports false when the operator asked to quit.
func (c *Console) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return false
	case "help", "?":
		c.info(usage)
	case "connect":
		c.conn.Connect(strings.Join(args, " "))
	case "disconnect":
		c.conn.Disconnect()
	case "status":
		c.info("state: " + c.conn.State().String())
	case "robot-status":
		c.report(c.disp.SendTool(c.conn, protocol.ToolStatus, nil))
	case "ip":
		c.report(c.disp.SendTool(c.conn, protocol.ToolIPAddress, nil))
	case protocol.ActionWalk:
		in := dispatch.WalkInput{}
		if !c.positional(cmd, args, &in.Steps, &in.Speed, &in.Direction) {
			return true
		}
		c.report(c.disp.SendWalkCommand(c.conn, in))
	default:
		spec, ok := protocol.LookupAction(cmd)
		if !ok {
			c.fail(fmt.Sprintf("unknown command %q, try help", cmd))
			return true
		}
		in := dispatch.ActionInput{Action: spec.Name, Args: map[string]string{}}
		vals := make([]*string, len(spec.Fields))
		for i := range vals {
			vals[i] = new(string)
		}
		if !c.positional(cmd, args, vals...) {
			return true
		}
		for i, f := range spec.Fields {
			in.Args[f] = *vals[i]
		}
		c.report(c.disp.SendAction(c.conn, in))
	}
	return true
}

func (c *Console) positional(cmd string, args []string, dst ...*string) bool {
	if len(args) != len(dst) {
		c.fail(fmt.Sprintf("%s expects %d arguments, got %d", cmd, len(dst), len(args)))
		return false
	}
	for i, a := range args {
		*dst[i] = a
	}
	return true
}

func (c *Console) report(err error) {
	if err == nil {
		c.info("sent")
		return
	}
	c.fail(err.Error())
}

func (c *Console) info(msg string) {
	c.out.Line(c.infoColor, msg)
}

func (c *Console) fail(msg string) {
	c.out.Line(c.errColor, "✗ "+msg)
}
