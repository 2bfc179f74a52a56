package game

import "errors"

var (
	ErrInvalidSize    = errors.New("board size must be a positive integer")
	ErrOutOfBounds    = errors.New("move is out of bounds")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrGameOver       = errors.New("game is already finished")
	ErrGameNotStarted = errors.New("game is not started")
)
