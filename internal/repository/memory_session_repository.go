package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository creates an in-process SessionRepository.
// Sessions idle for longer than ttl are treated as gone.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *memorySessionRepository) Create(ctx context.Context, s *Session) error {
	_, span := tracer.Start(ctx, "MemorySessionRepository.Create")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[s.ID]; ok && !r.expired(e) {
		return ErrSessionExists
	}
	r.sessions[s.ID] = &memoryEntry{session: s.Clone(), expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	_, span := tracer.Start(ctx, "MemorySessionRepository.FindByID")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

func (r *memorySessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	_, span := tracer.Start(ctx, "MemorySessionRepository.Update")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	working := e.session.Clone()
	if err := fn(working.Game); err != nil {
		return nil, err
	}
	working.UpdatedAt = r.now()

	e.session = working
	e.expiresAt = working.UpdatedAt.Add(r.ttl)
	return working.Clone(), nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "MemorySessionRepository.Delete")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(id); !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// PurgeExpired drops every session idle past its TTL.
func (r *memorySessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, e := range r.sessions {
		if now.After(e.expiresAt) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}

// lookup must be called with r.mu held.
func (r *memorySessionRepository) lookup(id string) (*memoryEntry, bool) {
	e, ok := r.sessions[id]
	if !ok || r.expired(e) {
		return nil, false
	}
	return e, true
}

func (r *memorySessionRepository) expired(e *memoryEntry) bool {
	return r.now().After(e.expiresAt)
}
