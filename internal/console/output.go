package console

import (
	"io"
	"sync"

	"github.com/fatih/color"
)

// Output is the terminal shared by the console and the event printer.
// Each line is written whole under one lock.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

func (o *Output) Line(c *color.Color, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c.Fprintln(o.w, msg)
}
