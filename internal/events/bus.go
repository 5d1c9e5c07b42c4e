// Package events provides the ordered connection event stream.
package events

import (
	"sync"

	"github.com/dkeye/Remote/internal/domain"
)

type Handler func(domain.Event)

// Bus fans events out to subscribers. Every subscriber owns an unbounded
// queue and a delivery goroutine, so Publish never blocks and each handler
// sees events in publish order. Late subscribers get no replay.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	next   uint64
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers h and returns a function that removes it.
// Pending events are dropped on unsubscribe.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	s := newSubscriber(h)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.stop(true)
		return func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = s
	b.mu.Unlock()

	go s.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			s.stop(true)
		})
	}
}

func (b *Bus) Publish(e domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		s.push(e)
	}
}

// Close stops accepting events. Subscribers still drain what was queued.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		s.stop(false)
		delete(b.subs, id)
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

type subscriber struct {
	handler Handler

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []domain.Event
	closed bool
}

func newSubscriber(h Handler) *subscriber {
	s := &subscriber{handler: h}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *subscriber) push(e domain.Event) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, e)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *subscriber) stop(drop bool) {
	s.mu.Lock()
	s.closed = true
	if drop {
		s.queue = nil
	}
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *subscriber) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		e := s.queue[0]
		s.queue[0] = domain.Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.handler(e)
	}
}
