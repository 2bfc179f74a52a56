package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ctchen222/tictactoe-grid/internal/game"
	"ctchen222/tictactoe-grid/internal/repository"
	"ctchen222/tictactoe-grid/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) SessionService {
	t.Helper()
	svc, err := NewSessionService(repository.NewMemorySessionRepository(time.Hour), 10)
	require.NoError(t, err)
	return svc
}

func TestSessionService_FullGame(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.Open(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, game.StateNotStarted, session.Game.State)

	_, _, err = svc.Move(ctx, session.ID, 0, 0)
	assert.ErrorIs(t, err, game.ErrGameNotStarted)

	session, err = svc.Start(ctx, session.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, game.PlayerX, session.Game.CurrentTurn)

	moves := [][2]int{{0, 0}, {1, 1}, {0, 1}, {1, 0}}
	for _, m := range moves {
		_, outcome, err := svc.Move(ctx, session.ID, m[0], m[1])
		require.NoError(t, err)
		assert.Equal(t, game.StatusInProgress, outcome.Status)
	}

	session, outcome, err := svc.Move(ctx, session.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, game.Outcome{Status: game.StatusWon, Winner: game.PlayerX}, outcome)
	assert.Equal(t, game.StateWon, session.Game.State)

	_, _, err = svc.Move(ctx, session.ID, 2, 2)
	assert.ErrorIs(t, err, game.ErrGameOver)

	session, err = svc.Reset(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StateNotStarted, session.Game.State)

	got, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Game.Board)

	require.NoError(t, svc.Close(ctx, session.ID))
	_, err = svc.Get(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionService_StartRejectsBadSizes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.Open(ctx)
	require.NoError(t, err)

	for _, size := range []int{0, -1, 11} {
		_, err := svc.Start(ctx, session.ID, size)
		assert.ErrorIs(t, err, game.ErrInvalidSize, "size %d", size)
	}

	got, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StateNotStarted, got.Game.State, "a rejected size does not start the game")
}

func TestSessionService_InvalidMovesLeaveBoardUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.Open(ctx)
	require.NoError(t, err)
	_, err = svc.Start(ctx, session.ID, 3)
	require.NoError(t, err)
	_, _, err = svc.Move(ctx, session.ID, 1, 1)
	require.NoError(t, err)

	_, _, err = svc.Move(ctx, session.ID, 1, 1)
	assert.ErrorIs(t, err, game.ErrCellOccupied)
	_, _, err = svc.Move(ctx, session.ID, 3, 0)
	assert.ErrorIs(t, err, game.ErrOutOfBounds)

	got, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Game.Moves)
	assert.Equal(t, game.PlayerO, got.Game.CurrentTurn)
}

func TestSessionService_UnknownSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Start(ctx, "missing", 3)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	_, _, err = svc.Move(ctx, "missing", 0, 0)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	_, err = svc.Reset(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.ErrorIs(t, svc.Close(ctx, "missing"), repository.ErrSessionNotFound)
}

func TestSessionService_WithMockRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Open wraps repository errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockSessionRepository(ctrl)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		svc, err := NewSessionService(repo, 10)
		require.NoError(t, err)

		_, err = svc.Open(ctx)
		assert.ErrorContains(t, err, "failed to open session")
	})

	t.Run("Move runs the game inside Update", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockSessionRepository(ctrl)

		g := game.NewGame()
		require.NoError(t, g.Start(1))
		repo.EXPECT().
			Update(gomock.Any(), "solo", gomock.Any()).
			DoAndReturn(func(_ context.Context, id string, fn repository.UpdateFunc) (*repository.Session, error) {
				if err := fn(g); err != nil {
					return nil, err
				}
				return &repository.Session{ID: id, Game: g}, nil
			})

		svc, err := NewSessionService(repo, 10)
		require.NoError(t, err)

		session, outcome, err := svc.Move(ctx, "solo", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, game.Outcome{Status: game.StatusWon, Winner: game.PlayerX}, outcome)
		assert.Equal(t, game.StateWon, session.Game.State)
	})

	t.Run("Start never touches the repository for oversized boards", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockSessionRepository(ctrl)

		svc, err := NewSessionService(repo, 4)
		require.NoError(t, err)

		_, err = svc.Start(ctx, "any", 5)
		assert.ErrorIs(t, err, game.ErrInvalidSize)
	})
}
