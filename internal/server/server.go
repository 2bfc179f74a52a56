package server

import (
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"ctchen222/tictactoe-grid/internal/api/controller"
	"ctchen222/tictactoe-grid/internal/api/service"
	"ctchen222/tictactoe-grid/internal/client"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	sessions          service.SessionService
	sessionController *controller.SessionController
	static            fs.FS
	upgrader          websocket.Upgrader
	engine            *gin.Engine
}

// NewServer builds the gin engine serving the page, its websocket and the REST API.
func NewServer(sessions service.SessionService, sessionController *controller.SessionController, static fs.FS) *Server {
	s := &Server{
		sessions:          sessions,
		sessionController: sessionController,
		static:            static,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.registerHandlers()
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHandlers() {
	s.engine.GET("/", s.handleIndex)
	s.engine.StaticFS("/assets", http.FS(s.static))
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/ws", s.handleWebSocket)

	s.sessionController.Register(s.engine.Group("/api"))
}

// sameOrigin accepts requests without an Origin header (non-browser clients)
// and browser requests from a page served by this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (s *Server) handleIndex(c *gin.Context) {
	index, err := fs.ReadFile(s.static, "index.html")
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", index)
}

// handleWebSocket upgrades the connection and runs one client, which owns a
// single session for as long as the page stays open.
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	ctx, span := tracer.Start(r.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	cl := client.NewClient(conn, s.sessions)
	if err := cl.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "Client session failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Client session failed")
	}
}
