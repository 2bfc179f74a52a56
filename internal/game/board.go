package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Board is an n×n grid of marks indexed as Board[row][col].
type Board [][]PlayerMark

// NewBoard returns an empty board of the given size.
func NewBoard(size int) (Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	board := make(Board, size)
	for i := range board {
		board[i] = make([]PlayerMark, size)
	}
	return board, nil
}

// ParseSize parses the board size entered in the start form.
func ParseSize(raw string) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSize, raw)
	}
	if size < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return size, nil
}

// Size returns n for an n×n board.
func (b Board) Size() int {
	return len(b)
}

// InBounds reports whether (row, col) addresses a cell of the board.
func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(b) && col >= 0 && col < len(b)
}

// HasEmptyCells reports whether any cell is still unmarked.
func (b Board) HasEmptyCells() bool {
	for _, row := range b {
		for _, cell := range row {
			if cell == None {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	board := make(Board, len(b))
	for i, row := range b {
		board[i] = make([]PlayerMark, len(row))
		copy(board[i], row)
	}
	return board
}
