package models

import "ctchen222/tictactoe-grid/pkg/proto"

// CreateSessionRequest defines the body of a new session request. A zero
// size opens the session without starting a game.
type CreateSessionRequest struct {
	Size int `json:"size" binding:"omitempty,min=1"`
}

// StartRequest defines the body of a start game request.
type StartRequest struct {
	Size int `json:"size" binding:"required,min=1"`
}

// MoveRequest defines the body of a move request.
type MoveRequest struct {
	Row *int `json:"row" binding:"required,min=0"`
	Col *int `json:"col" binding:"required,min=0"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID string                       `json:"session_id"`
	Token     string                       `json:"token"`
	State     *proto.ServerToClientMessage `json:"state"`
}
