package robot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Remote/internal/protocol"
)

func TestNewAction(t *testing.T) {
	tests := []struct {
		name   string
		action string
		args   map[string]int
		want   Action
	}{
		{
			name:   "walk with args",
			action: protocol.ActionWalk,
			args:   map[string]int{protocol.ArgSteps: 3, protocol.ArgSpeed: 700, protocol.ArgDirection: -1},
			want:   Action{Name: "walk", Steps: 3, Speed: 700, Direction: -1, Amount: 30},
		},
		{
			name:   "walk defaults",
			action: protocol.ActionWalk,
			want:   Action{Name: "walk", Steps: 1, Speed: 1000, Direction: 1, Amount: 30},
		},
		{
			name:   "sit ignores steps",
			action: protocol.ActionSit,
			args:   map[string]int{protocol.ArgSteps: 5, protocol.ArgDirection: -1},
			want:   Action{Name: "sit", Steps: 1, Speed: 1000, Direction: 1, Amount: 30},
		},
		{
			name:   "swing keeps amount",
			action: protocol.ActionSwing,
			args:   map[string]int{protocol.ArgSteps: 2, protocol.ArgAmount: 45, protocol.ArgDirection: -1},
			want:   Action{Name: "swing", Steps: 2, Speed: 1000, Direction: 1, Amount: 45},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAction(tt.action, tt.args)
			if err != nil {
				t.Fatalf("NewAction: %v", err)
			}
			if got != tt.want {
				t.Errorf("NewAction = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := NewAction("dance", nil); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("NewAction(dance) err = %v, want ErrUnknownAction", err)
	}
}

func TestRobot_QueueFull(t *testing.T) {
	r := New(time.Millisecond, 1)
	a, _ := NewAction(protocol.ActionHome, nil)
	if err := r.Enqueue(a); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := r.Enqueue(a); !errors.Is(err, ErrQueueFull) {
		t.Errorf("second enqueue err = %v, want ErrQueueFull", err)
	}
	if r.Status() != StatusMoving {
		t.Errorf("Status = %q, want moving while queued", r.Status())
	}
}

func TestRobot_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(time.Millisecond, 4)
	if r.Status() != StatusIdle {
		t.Fatalf("initial Status = %q", r.Status())
	}
	go r.Run(ctx)

	walk, _ := NewAction(protocol.ActionWalk, map[string]int{protocol.ArgSteps: 2})
	sit, _ := NewAction(protocol.ActionSit, nil)
	if err := r.Enqueue(walk); err != nil {
		t.Fatal(err)
	}
	if err := r.Enqueue(sit); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Snapshot().Completed < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("snapshot = %+v, actions never finished", r.Snapshot())
		}
		time.Sleep(2 * time.Millisecond)
	}

	s := r.Snapshot()
	if s.Status != StatusIdle || s.Queued != 0 || s.Current != nil {
		t.Errorf("snapshot = %+v, want idle and empty", s)
	}
	if s.Last == nil || s.Last.Name != protocol.ActionSit {
		t.Errorf("last = %+v, want sit", s.Last)
	}
}

func TestRobot_Duration(t *testing.T) {
	r := New(10*time.Millisecond, 1)
	tests := []struct {
		a    Action
		want time.Duration
	}{
		{Action{Steps: 1, Speed: 1000}, 10 * time.Millisecond},
		{Action{Steps: 3, Speed: 500}, 15 * time.Millisecond},
		{Action{Steps: 0, Speed: 0}, 10 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := r.duration(tt.a); got != tt.want {
			t.Errorf("duration(%+v) = %v, want %v", tt.a, got, tt.want)
		}
	}
}
