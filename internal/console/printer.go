package console

import (
	"github.com/fatih/color"

	"github.com/dkeye/Remote/internal/domain"
)

// Printer renders events as coloured log lines.
type Printer struct {
	out *Output
}

func NewPrinter(out *Output) *Printer {
	return &Printer{out: out}
}

var kindColor = map[domain.EventKind]*color.Color{
	domain.EventConnecting: color.New(color.FgBlue),
	domain.EventOpened:     color.New(color.FgGreen),
	domain.EventClosed:     color.New(color.FgYellow),
	domain.EventError:      color.New(color.FgRed),
	domain.EventMessage:    color.New(color.FgCyan),
}

// Print has the events.Handler signature.
func (p *Printer) Print(e domain.Event) {
	c, ok := kindColor[e.Kind]
	if !ok {
		c = color.New(color.Reset)
	}
	p.out.Line(c, e.String())
}
