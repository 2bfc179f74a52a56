package proto

import "ctchen222/tictactoe-grid/internal/game"

// Client to server message types.
const (
	TypeStart = "start"
	TypeMove  = "move"
	TypeReset = "reset"
)

// Server to client message types.
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type string `json:"type" validate:"required,oneof=start move reset"`
	// Size is the raw value of the board size field of the start form.
	Size     string `json:"size,omitempty" validate:"required_if=Type start"`
	Position []int  `json:"position,omitempty" validate:"required_if=Type move"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type    string          `json:"type" validate:"required"`
	Reason  string          `json:"reason,omitempty"`
	Board   game.Board      `json:"board,omitempty"`
	Next    game.PlayerMark `json:"next,omitempty"`
	State   game.State      `json:"state,omitempty"`
	Winner  game.PlayerMark `json:"winner,omitempty"`
	Message string          `json:"message,omitempty"`
}

// NewStateMessage renders the game as a state message.
func NewStateMessage(g *game.Game) *ServerToClientMessage {
	return &ServerToClientMessage{
		Type:    TypeState,
		Board:   g.Board.Clone(),
		Next:    g.CurrentTurn,
		State:   g.State,
		Winner:  g.Winner,
		Message: g.StatusMessage(),
	}
}

// NewErrorMessage reports a rejected client message.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
