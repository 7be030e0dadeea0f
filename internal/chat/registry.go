package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BerylCAtieno/icp-profiler/internal/llm"
	"github.com/BerylCAtieno/icp-profiler/internal/models"
)

var ErrNotFound = errors.New("chat: session not found")

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry holds the open sessions, one per chat view. A view that goes away
// without closing its session is reclaimed once it has been idle for the
// configured TTL.
type Registry struct {
	opener   llm.ChatOpener
	settings settings

	mu       sync.RWMutex
	sessions map[string]*entry
}

func NewRegistry(opener llm.ChatOpener, opts ...Option) *Registry {
	return &Registry{
		opener:   opener,
		settings: newSettings(opts),
		sessions: make(map[string]*entry),
	}
}

func (r *Registry) Open(ctx context.Context, persona models.Persona, productContext string) (*Session, error) {
	s, err := open(ctx, r.opener, persona, productContext, r.settings)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	now := r.settings.now()
	r.sweepLocked(now)
	r.sessions[s.ID()] = &entry{session: s, lastUsed: now}
	r.mu.Unlock()

	r.settings.metrics.SessionOpened()
	s.log.Info("chat session opened")
	return s, nil
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.settings.now()
	r.sweepLocked(now)

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastUsed = now
	return e.session, nil
}

// Close forgets the session. Its channel is abandoned; a pending reply finishes
// against the detached session and is never seen again.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	r.settings.metrics.SessionClosed()
	e.session.log.Info("chat session closed")
	return nil
}

// Sweep drops sessions idle for longer than the TTL and reports how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.settings.now())
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.settings.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// sweepLocked skips sessions awaiting a reply; they are in use.
func (r *Registry) sweepLocked(now time.Time) int {
	ttl := r.settings.idleTTL
	if ttl <= 0 {
		return 0
	}

	evicted := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) <= ttl || e.session.State() == StateAwaitingReply {
			continue
		}
		delete(r.sessions, id)
		evicted++
		r.settings.metrics.SessionClosed()
		e.session.log.WithField("idle", now.Sub(e.lastUsed).String()).Info("chat session expired")
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
