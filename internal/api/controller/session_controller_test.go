package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ctchen222/tictactoe-grid/internal/api/service"
	"ctchen222/tictactoe-grid/internal/api/token"
	"ctchen222/tictactoe-grid/internal/game"
	"ctchen222/tictactoe-grid/internal/repository"
	"ctchen222/tictactoe-grid/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  T    `json:"extras"`
}

type createdSession struct {
	SessionID string                       `json:"session_id"`
	Token     string                       `json:"token"`
	State     *proto.ServerToClientMessage `json:"state"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemorySessionRepository(time.Hour)
	svc, err := service.NewSessionService(repo, 8)
	require.NoError(t, err)

	r := gin.New()
	NewSessionController(svc, token.NewIssuer("test-secret", time.Hour)).Register(r.Group("/api"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createSession(t *testing.T, r *gin.Engine, body any) createdSession {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/sessions", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[createdSession](t, w).Extras
}

func TestCreateSession(t *testing.T) {
	r := setupRouter(t)

	t.Run("Without size", func(t *testing.T) {
		created := createSession(t, r, nil)
		assert.NotEmpty(t, created.SessionID)
		assert.NotEmpty(t, created.Token)
		assert.Equal(t, game.StateNotStarted, created.State.State)
	})

	t.Run("With size", func(t *testing.T) {
		created := createSession(t, r, gin.H{"size": 4})
		assert.Equal(t, game.StateInProgress, created.State.State)
		assert.Equal(t, game.PlayerX, created.State.Next)
		assert.Len(t, created.State.Board, 4)
	})

	t.Run("Negative size", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/sessions", "", gin.H{"size": -2})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Size above the limit", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/sessions", "", gin.H{"size": 9})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decode[map[string]string](t, w)
		assert.False(t, env.Success)
		assert.Equal(t, http.StatusBadRequest, env.Code)
		assert.Contains(t, env.Extras["message"], game.ErrInvalidSize.Error())
	})
}

func TestSessionTokenRequired(t *testing.T) {
	r := setupRouter(t)
	mine := createSession(t, r, nil)
	other := createSession(t, r, nil)

	tests := []struct {
		name   string
		bearer string
		want   int
	}{
		{name: "Missing token", bearer: "", want: http.StatusUnauthorized},
		{name: "Garbage token", bearer: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "Token of another session", bearer: other.Token, want: http.StatusForbidden},
		{name: "Own token", bearer: mine.Token, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, "/api/sessions/"+mine.SessionID, tt.bearer, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPlayThroughREST(t *testing.T) {
	r := setupRouter(t)
	s := createSession(t, r, nil)
	base := "/api/sessions/" + s.SessionID

	w := do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 0, "col": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code, "move before start")

	w = do(t, r, http.MethodPost, base+"/start", s.Token, gin.H{"size": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 0, "col": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, game.PlayerO, decode[proto.ServerToClientMessage](t, w).Extras.Next)

	w = do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 0, "col": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code, "occupied cell")

	w = do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 2, "col": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code, "out of bounds")

	w = do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing column")

	w = do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 1, "col": 0})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 0, "col": 1})
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[proto.ServerToClientMessage](t, w).Extras
	assert.Equal(t, game.StateWon, state.State)
	assert.Equal(t, game.PlayerX, state.Winner)

	w = do(t, r, http.MethodPost, base+"/moves", s.Token, gin.H{"row": 1, "col": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "game over")

	w = do(t, r, http.MethodPost, base+"/reset", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, game.StateNotStarted, decode[proto.ServerToClientMessage](t, w).Extras.State)

	w = do(t, r, http.MethodDelete, base, s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, base, s.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
