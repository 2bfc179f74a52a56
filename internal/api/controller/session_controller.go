package controller

import (
	"log/slog"
	"net/http"
	"strings"

	"ctchen222/tictactoe-grid/internal/api/models"
	"ctchen222/tictactoe-grid/internal/api/response"
	"ctchen222/tictactoe-grid/internal/api/service"
	"ctchen222/tictactoe-grid/internal/api/token"
	"ctchen222/tictactoe-grid/pkg/proto"

	"github.com/gin-gonic/gin"
)

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessionService service.SessionService
	tokens         *token.Issuer
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService, tokens *token.Issuer) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		tokens:         tokens,
	}
}

// RequireSessionToken rejects requests whose bearer token was not issued for the :id session.
func (sc *SessionController) RequireSessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "missing session token")
			return
		}

		sessionID, err := sc.tokens.Verify(raw)
		if err != nil {
			response.FromError(c, err)
			return
		}
		if sessionID != c.Param("id") {
			response.ErrorResponse(c, http.StatusForbidden, "token was issued for another session")
			return
		}
		c.Next()
	}
}

// Create handles the new session endpoint. A positive size also starts the game.
func (sc *SessionController) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	session, err := sc.sessionService.Open(ctx)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if req.Size > 0 {
		id := session.ID
		session, err = sc.sessionService.Start(ctx, id, req.Size)
		if err != nil {
			// Do not leave an unreachable session behind.
			if closeErr := sc.sessionService.Close(ctx, id); closeErr != nil {
				slog.DebugContext(ctx, "could not discard session after failed start", "error", closeErr)
			}
			response.FromError(c, err)
			return
		}
	}

	signed, err := sc.tokens.Issue(session.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.CreatedResponse(c, models.SessionResponse{
		SessionID: session.ID,
		Token:     signed,
		State:     proto.NewStateMessage(session.Game),
	})
}

// Get handles the session state endpoint.
func (sc *SessionController) Get(c *gin.Context) {
	session, err := sc.sessionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewStateMessage(session.Game))
}

// Start handles the start game endpoint.
func (sc *SessionController) Start(c *gin.Context) {
	var req models.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := sc.sessionService.Start(c.Request.Context(), c.Param("id"), req.Size)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewStateMessage(session.Game))
}

// Move handles the move endpoint.
func (sc *SessionController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, _, err := sc.sessionService.Move(c.Request.Context(), c.Param("id"), *req.Row, *req.Col)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewStateMessage(session.Game))
}

// Reset handles the reset endpoint.
func (sc *SessionController) Reset(c *gin.Context) {
	session, err := sc.sessionService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewStateMessage(session.Game))
}

// Delete handles the close session endpoint.
func (sc *SessionController) Delete(c *gin.Context) {
	if err := sc.sessionService.Close(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Session closed"})
}

// Register mounts the session routes on r.
func (sc *SessionController) Register(r gin.IRouter) {
	sessions := r.Group("/sessions")
	sessions.POST("", sc.Create)

	owned := sessions.Group("/:id", sc.RequireSessionToken())
	owned.GET("", sc.Get)
	owned.POST("/start", sc.Start)
	owned.POST("/moves", sc.Move)
	owned.POST("/reset", sc.Reset)
	owned.DELETE("", sc.Delete)
}
