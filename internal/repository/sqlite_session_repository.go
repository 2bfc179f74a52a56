package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctchen222/tictactoe-grid/internal/game"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

type sessionRow struct {
	ID        string `db:"id"`
	State     string `db:"state"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
	ExpiresAt int64  `db:"expires_at"`
}

type sqliteSessionRepository struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteSessionRepository creates an SQLite-based SessionRepository. The
// sessions table must already exist (see db.InitializeDB).
func NewSQLiteSessionRepository(db *sqlx.DB, ttl time.Duration) SessionRepository {
	return &sqliteSessionRepository{db: db, ttl: ttl, now: time.Now}
}

func (r *sqliteSessionRepository) Create(ctx context.Context, s *Session) error {
	ctx, span := tracer.Start(ctx, "SQLiteSessionRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.ID))

	state, err := json.Marshal(s.Game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	now := r.now()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// An expired row with the same id may still be waiting for the janitor.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND expires_at < ?`, s.ID, now.UnixNano()); err != nil {
		return fmt.Errorf("failed to clear expired session: %w", err)
	}

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM sessions WHERE id = ?`, s.ID); err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists > 0 {
		return ErrSessionExists
	}

	query := `INSERT INTO sessions (id, state, created_at, updated_at, expires_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, s.ID, string(state), s.CreatedAt.UnixNano(), s.UpdatedAt.UnixNano(), now.Add(r.ttl).UnixNano()); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return tx.Commit()
}

func (r *sqliteSessionRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "SQLiteSessionRepository.FindByID")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	return r.get(ctx, r.db, id)
}

func (r *sqliteSessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	ctx, span := tracer.Start(ctx, "SQLiteSessionRepository.Update")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s.Game); err != nil {
		return nil, err
	}

	state, err := json.Marshal(s.Game)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game: %w", err)
	}
	now := r.now()
	s.UpdatedAt = now

	query := `UPDATE sessions SET state = ?, updated_at = ?, expires_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, string(state), now.UnixNano(), now.Add(r.ttl).UnixNano(), id); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session update: %w", err)
	}
	return s, nil
}

func (r *sqliteSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SQLiteSessionRepository.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND expires_at >= ?`, id, r.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// PurgeExpired deletes every session whose TTL ran out before now.
func (r *sqliteSessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *sqliteSessionRepository) get(ctx context.Context, q sqlx.QueryerContext, id string) (*Session, error) {
	var row sessionRow
	query := `SELECT id, state, created_at, updated_at, expires_at FROM sessions WHERE id = ? AND expires_at >= ?`
	err := sqlx.GetContext(ctx, q, &row, query, id, r.now().UnixNano())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var g game.Game
	if err := json.Unmarshal([]byte(row.State), &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	return &Session{
		ID:        row.ID,
		Game:      &g,
		CreatedAt: time.Unix(0, row.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, row.UpdatedAt).UTC(),
	}, nil
}
