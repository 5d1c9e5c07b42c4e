package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type SessionID string

type sessionEntry struct {
	Remote      string
	ConnectedAt time.Time
	Commands    int
	Cancel      context.CancelFunc
}

// ClientInfo is a read-only view for the status API.
type ClientInfo struct {
	SID         SessionID `json:"sid"`
	Remote      string    `json:"remote"`
	ConnectedAt time.Time `json:"connected_at"`
	Commands    int       `json:"commands"`
}

// Registry tracks operator connections to the simulator.
type Registry struct {
	mu       sync.RWMutex
	sessions map[SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[SessionID]*sessionEntry),
	}
}

func (r *Registry) Bind(sid SessionID, remote string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Remote: remote, ConnectedAt: time.Now(), Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("remote", remote).Msg("bound session")
}

func (r *Registry) Unbind(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// CountCommand records one tools/call received on sid.
func (r *Registry) CountCommand(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.Commands++
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Clients() []ClientInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ClientInfo, 0, len(r.sessions))
	for sid, e := range r.sessions {
		out = append(out, ClientInfo{SID: sid, Remote: e.Remote, ConnectedAt: e.ConnectedAt, Commands: e.Commands})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}

// Cancel stops the pumps of sid.
func (r *Registry) Cancel(sid SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

// CancelAll stops every session, used on shutdown.
func (r *Registry) CancelAll() {
	r.mu.RLock()
	cancels := make([]context.CancelFunc, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.Cancel != nil {
			cancels = append(cancels, e.Cancel)
		}
	}
	r.mu.RUnlock()
	for _, c := range cancels {
		c()
	}
}
