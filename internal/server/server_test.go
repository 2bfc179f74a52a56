package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"ctchen222/tictactoe-grid/internal/api/controller"
	"ctchen222/tictactoe-grid/internal/api/service"
	"ctchen222/tictactoe-grid/internal/api/token"
	"ctchen222/tictactoe-grid/internal/game"
	"ctchen222/tictactoe-grid/internal/repository"
	"ctchen222/tictactoe-grid/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemorySessionRepository(time.Hour)
	svc, err := service.NewSessionService(repo, 20)
	require.NoError(t, err)

	static := fstest.MapFS{
		"index.html": {Data: []byte("<html>board</html>")},
		"app.js":     {Data: []byte("console.log('app')")},
	}
	srv := NewServer(svc, controller.NewSessionController(svc, token.NewIssuer("secret", time.Hour)), static)

	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	return ts
}

func TestStaticAndHealth(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{path: "/", want: http.StatusOK},
		{path: "/assets/app.js", want: http.StatusOK},
		{path: "/assets/missing.js", want: http.StatusNotFound},
		{path: "/healthz", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestWebSocketOrigin(t *testing.T) {
	ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{name: "No origin", origin: ""},
		{name: "Same origin", origin: ts.URL},
		{name: "Foreign origin", origin: "http://evil.example", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}

			conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
			if tt.wantErr {
				require.Error(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			conn.Close()
		})
	}
}

func TestWebSocketGame(t *testing.T) {
	ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() proto.ServerToClientMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg proto.ServerToClientMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, game.StateNotStarted, read().State)

	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeStart, Size: "3"}))
	started := read()
	assert.Equal(t, game.StateInProgress, started.State)
	assert.Len(t, started.Board, 3)

	moves := [][]int{{0, 2}, {0, 0}, {1, 1}, {1, 0}, {2, 0}}
	var last proto.ServerToClientMessage
	for _, m := range moves {
		require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: m}))
		last = read()
		require.Equal(t, proto.TypeState, last.Type, last.Reason)
	}

	assert.Equal(t, game.StateWon, last.State)
	assert.Equal(t, game.PlayerX, last.Winner)
	assert.Equal(t, "Game over, winner is X", last.Message)

	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeStart, Size: "two"}))
	rejected := read()
	assert.Equal(t, proto.TypeError, rejected.Type)
	assert.Equal(t, game.ErrInvalidSize.Error(), rejected.Reason)
}
