package repository

import (
	"context"
	"errors"
	"time"

	"ctchen222/tictactoe-grid/internal/game"

	"go.opentelemetry.io/otel"
)

//go:generate mockgen -source=session_repository.go -destination=mocks/mock_session_repository.go -package=mocks

var tracer = otel.Tracer("repository.session")

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// Session is one page load's game. Only the live board is kept; it is
// overwritten on every move and dropped when the session closes.
type Session struct {
	ID        string     `json:"id"`
	Game      *game.Game `json:"game"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Clone returns a copy that shares no board memory with s.
func (s *Session) Clone() *Session {
	c := *s
	if s.Game != nil {
		g := *s.Game
		g.Board = s.Game.Board.Clone()
		c.Game = &g
	}
	return &c
}

// UpdateFunc mutates a session's game. Returning an error discards the change.
type UpdateFunc func(g *game.Game) error

// SessionRepository defines the interface for live session storage.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	// Update applies fn atomically with respect to other updates of the same session.
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by backends without native key expiry.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
