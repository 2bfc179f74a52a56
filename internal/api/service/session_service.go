package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/tictactoe-grid/internal/game"
	"ctchen222/tictactoe-grid/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("service.session")
	meter  = otel.Meter("service.session")
)

// SessionService defines the game operations a transport can perform on a session.
type SessionService interface {
	// Open creates a session whose game is not started yet.
	Open(ctx context.Context) (*repository.Session, error)
	// Start sizes and clears the board of an existing session.
	Start(ctx context.Context, id string, size int) (*repository.Session, error)
	// Move plays the current player's mark at (row, col).
	Move(ctx context.Context, id string, row, col int) (*repository.Session, game.Outcome, error)
	// Reset discards the board, returning the session to the start form.
	Reset(ctx context.Context, id string) (*repository.Session, error)
	Get(ctx context.Context, id string) (*repository.Session, error)
	Close(ctx context.Context, id string) error
}

type sessionService struct {
	sessions     repository.SessionRepository
	maxBoardSize int

	gamesStarted  metric.Int64Counter
	movesPlayed   metric.Int64Counter
	gamesFinished metric.Int64Counter
}

// NewSessionService creates a new SessionService. Boards larger than
// maxBoardSize are rejected as an invalid size.
func NewSessionService(sessions repository.SessionRepository, maxBoardSize int) (SessionService, error) {
	gamesStarted, err := meter.Int64Counter("tictactoe.games.started", metric.WithDescription("Games started"))
	if err != nil {
		return nil, fmt.Errorf("failed to create games started counter: %w", err)
	}
	movesPlayed, err := meter.Int64Counter("tictactoe.moves.played", metric.WithDescription("Moves accepted"))
	if err != nil {
		return nil, fmt.Errorf("failed to create moves played counter: %w", err)
	}
	gamesFinished, err := meter.Int64Counter("tictactoe.games.finished", metric.WithDescription("Games that reached a win or a draw"))
	if err != nil {
		return nil, fmt.Errorf("failed to create games finished counter: %w", err)
	}

	return &sessionService{
		sessions:      sessions,
		maxBoardSize:  maxBoardSize,
		gamesStarted:  gamesStarted,
		movesPlayed:   movesPlayed,
		gamesFinished: gamesFinished,
	}, nil
}

func (s *sessionService) Open(ctx context.Context) (*repository.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Open")
	defer span.End()

	now := time.Now().UTC()
	session := &repository.Session{
		ID:        uuid.New().String(),
		Game:      game.NewGame(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	if err := s.sessions.Create(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session")
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	slog.InfoContext(ctx, "Session opened", "session.id", session.ID)
	return session, nil
}

func (s *sessionService) Start(ctx context.Context, id string, size int) (*repository.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Start", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("board.size", size),
	))
	defer span.End()

	if size > s.maxBoardSize {
		err := fmt.Errorf("%w: %d exceeds the maximum of %d", game.ErrInvalidSize, size, s.maxBoardSize)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Board too large")
		return nil, err
	}

	session, err := s.sessions.Update(ctx, id, func(g *game.Game) error {
		return g.Start(size)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start game")
		return nil, err
	}

	s.gamesStarted.Add(ctx, 1, metric.WithAttributes(attribute.Int("board.size", size)))
	slog.InfoContext(ctx, "Game started", "session.id", id, "board.size", size)
	return session, nil
}

func (s *sessionService) Move(ctx context.Context, id string, row, col int) (*repository.Session, game.Outcome, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Move", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	var outcome game.Outcome
	var player game.PlayerMark
	session, err := s.sessions.Update(ctx, id, func(g *game.Game) error {
		player = g.CurrentPlayer()
		var err error
		outcome, err = g.Play(row, col)
		return err
	})
	if err != nil {
		slog.WarnContext(ctx, "invalid move", "session.id", id, "move.row", row, "move.col", col, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return nil, game.Outcome{}, err
	}
	span.SetAttributes(
		attribute.Bool("move.valid", true),
		attribute.String("move.player", string(player)),
		attribute.String("move.outcome", string(outcome.Status)),
	)

	s.movesPlayed.Add(ctx, 1)
	if outcome.Status != game.StatusInProgress {
		s.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome.Status))))
		slog.InfoContext(ctx, "Game finished", "session.id", id, "outcome", outcome.Status, "winner", outcome.Winner)
	}
	return session, outcome, nil
}

func (s *sessionService) Reset(ctx context.Context, id string) (*repository.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Reset", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	session, err := s.sessions.Update(ctx, id, func(g *game.Game) error {
		g.Reset()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to reset game")
		return nil, err
	}

	slog.InfoContext(ctx, "Game reset", "session.id", id)
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*repository.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Get", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	return s.sessions.FindByID(ctx, id)
}

func (s *sessionService) Close(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionService.Close", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	if err := s.sessions.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to close session")
		return err
	}

	slog.InfoContext(ctx, "Session closed", "session.id", id)
	return nil
}
