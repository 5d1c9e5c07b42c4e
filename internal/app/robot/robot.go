// Package robot simulates the motion controller of the robot firmware.
package robot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Remote/internal/protocol"
)

const (
	StatusIdle   = "idle"
	StatusMoving = "moving"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrQueueFull     = errors.New("action queue full")
)

// Action is one queued motion. Unused parameters stay zero.
type Action struct {
	Name      string `json:"name"`
	Steps     int    `json:"steps"`
	Speed     int    `json:"speed"`
	Direction int    `json:"direction"`
	Amount    int    `json:"amount"`
}

// Firmware defaults for parameters missing from a request.
var defaultAction = Action{Steps: 1, Speed: 1000, Direction: 1, Amount: 30}

type Snapshot struct {
	Status    string  `json:"status"`
	Current   *Action `json:"current,omitempty"`
	Queued    int     `json:"queued"`
	Completed int     `json:"completed"`
	Last      *Action `json:"last,omitempty"`
}

// Robot executes queued actions one at a time.
type Robot struct {
	stepDuration time.Duration
	queue        chan Action

	mu        sync.RWMutex
	current   *Action
	last      *Action
	pending   int
	completed int
}

func New(stepDuration time.Duration, queueSize int) *Robot {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Robot{
		stepDuration: stepDuration,
		queue:        make(chan Action, queueSize),
	}
}

// NewAction fills a from the firmware defaults and checks the name.
func NewAction(name string, args map[string]int) (Action, error) {
	if _, ok := protocol.LookupAction(name); !ok {
		return Action{}, ErrUnknownAction
	}
	a := defaultAction
	a.Name = name
	if v, ok := args[protocol.ArgSteps]; ok {
		a.Steps = v
	}
	if v, ok := args[protocol.ArgSpeed]; ok {
		a.Speed = v
	}
	if v, ok := args[protocol.ArgDirection]; ok {
		a.Direction = v
	}
	if v, ok := args[protocol.ArgAmount]; ok {
		a.Amount = v
	}
	switch name {
	case protocol.ActionSit, protocol.ActionHome:
		a.Steps, a.Direction = 1, 1
	case protocol.ActionSwing, protocol.ActionShakeTail:
		a.Direction = 1
	}
	return a, nil
}

func (r *Robot) Enqueue(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case r.queue <- a:
		r.pending++
		log.Info().Str("module", "app.robot").Str("action", a.Name).Int("steps", a.Steps).Int("speed", a.Speed).Int("direction", a.Direction).Msg("queued")
		return nil
	default:
		return ErrQueueFull
	}
}

// Status reports "moving" while an action runs or waits, "idle" otherwise.
func (r *Robot) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pending > 0 {
		return StatusMoving
	}
	return StatusIdle
}

func (r *Robot) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Snapshot{Status: StatusIdle, Queued: len(r.queue), Completed: r.completed}
	if r.pending > 0 {
		s.Status = StatusMoving
	}
	if r.current != nil {
		cur := *r.current
		s.Current = &cur
	}
	if r.last != nil {
		last := *r.last
		s.Last = &last
	}
	return s
}

// Run executes actions until ctx is done.
func (r *Robot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.robot").Msg("robot loop stopped")
			return
		case a := <-r.queue:
			r.execute(ctx, a)
		}
	}
}

func (r *Robot) execute(ctx context.Context, a Action) {
	r.mu.Lock()
	r.current = &a
	r.mu.Unlock()

	t := time.NewTimer(r.duration(a))
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	t.Stop()

	r.mu.Lock()
	r.current = nil
	r.last = &a
	r.pending--
	r.completed++
	r.mu.Unlock()
	log.Info().Str("module", "app.robot").Str("action", a.Name).Msg("done")
}

// duration scales with steps; speed is the firmware's per-step period in ms
// relative to its 1000ms default.
func (r *Robot) duration(a Action) time.Duration {
	steps := a.Steps
	if steps < 1 {
		steps = 1
	}
	d := r.stepDuration * time.Duration(steps)
	if a.Speed > 0 {
		d = d * time.Duration(a.Speed) / 1000
	}
	return d
}
