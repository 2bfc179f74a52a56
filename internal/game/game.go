package game

import (
	"fmt"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// State is the lifecycle position of a whole game.
type State string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game states
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateDraw       State = "draw"
)

// Opponent returns the other player's mark.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Game is the board state of one session: the grid, the player to move and
// the outcome of the last move.
type Game struct {
	Board       Board      `json:"board"`
	CurrentTurn PlayerMark `json:"current_turn"`
	State       State      `json:"state"`
	Winner      PlayerMark `json:"winner"`
	Moves       int        `json:"moves"`
}

// NewGame returns a game that has not been started yet.
func NewGame() *Game {
	return &Game{State: StateNotStarted}
}

// Initialize sizes and clears the board and unsets the turn tracker.
func (g *Game) Initialize(size int) error {
	board, err := NewBoard(size)
	if err != nil {
		return err
	}

	g.Board = board
	g.CurrentTurn = None
	g.Winner = None
	g.Moves = 0
	g.State = StateInProgress
	return nil
}

// Start initializes a new game and hands the first move to X.
func (g *Game) Start(size int) error {
	if err := g.Initialize(size); err != nil {
		return err
	}
	g.AdvanceTurn()
	return nil
}

// Reset discards the board and returns the game to the not started state.
func (g *Game) Reset() {
	g.Board = nil
	g.CurrentTurn = None
	g.Winner = None
	g.Moves = 0
	g.State = StateNotStarted
}

// CurrentPlayer returns the player to move, or None before the first turn.
func (g *Game) CurrentPlayer() PlayerMark {
	return g.CurrentTurn
}

// AdvanceTurn passes the move to the other player. The first call after
// Initialize hands it to X.
func (g *Game) AdvanceTurn() PlayerMark {
	if g.CurrentTurn == None {
		g.CurrentTurn = PlayerX
	} else {
		g.CurrentTurn = g.CurrentTurn.Opponent()
	}
	return g.CurrentTurn
}

// ApplyMove writes player's mark into an empty in-bounds cell.
func (g *Game) ApplyMove(row, col int, player PlayerMark) error {
	if !g.Board.InBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d) on a board of size %d", ErrOutOfBounds, row, col, g.Board.Size())
	}
	if g.Board[row][col] != None {
		return fmt.Errorf("%w: (%d, %d)", ErrCellOccupied, row, col)
	}

	g.Board[row][col] = player
	g.Moves++
	return nil
}

// Play places the current player's mark and evaluates the result. A
// deciding move freezes the turn tracker, any other move advances it.
func (g *Game) Play(row, col int) (Outcome, error) {
	if g.State == StateNotStarted {
		return Outcome{}, ErrGameNotStarted
	}
	if g.IsOver() {
		return Outcome{}, ErrGameOver
	}

	player := g.CurrentPlayer()
	if err := g.ApplyMove(row, col, player); err != nil {
		return Outcome{}, err
	}

	outcome := Evaluate(g.Board, row, col, player)
	switch outcome.Status {
	case StatusWon:
		g.State = StateWon
		g.Winner = outcome.Winner
	case StatusDraw:
		g.State = StateDraw
	default:
		g.AdvanceTurn()
	}

	return outcome, nil
}

// IsOver reports whether the game reached a terminal state.
func (g *Game) IsOver() bool {
	return g.State == StateWon || g.State == StateDraw
}

// StatusMessage is the status line shown under the board.
func (g *Game) StatusMessage() string {
	switch g.State {
	case StateWon:
		return fmt.Sprintf("Game over, winner is %s", g.Winner)
	case StateDraw:
		return "Game over, winner is nobody"
	case StateInProgress:
		return fmt.Sprintf("Next move is for %s", g.CurrentTurn)
	}
	return "Choose a board size to start"
}
