package game

// Status is the per-move result of Evaluate.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// Outcome is what a single move produced. Winner is set only for StatusWon.
type Outcome struct {
	Status Status     `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
}

// Evaluate decides the outcome of player's move at (lastRow, lastCol).
//
// Only the lines passing through the last move are checked: its row, its
// column, and a diagonal only when the move lies on it. A line that does not
// contain the last move cannot have been completed by it.
func Evaluate(board Board, lastRow, lastCol int, player PlayerMark) Outcome {
	n := board.Size()

	if lineComplete(n, player, func(i int) PlayerMark { return board[lastRow][i] }) ||
		lineComplete(n, player, func(i int) PlayerMark { return board[i][lastCol] }) ||
		(lastRow == lastCol && lineComplete(n, player, func(i int) PlayerMark { return board[i][i] })) ||
		(lastRow+lastCol == n-1 && lineComplete(n, player, func(i int) PlayerMark { return board[i][n-1-i] })) {
		return Outcome{Status: StatusWon, Winner: player}
	}

	if !board.HasEmptyCells() {
		return Outcome{Status: StatusDraw}
	}
	return Outcome{Status: StatusInProgress}
}

// lineComplete reports whether all n cells returned by cell equal player.
func lineComplete(n int, player PlayerMark, cell func(i int) PlayerMark) bool {
	if player == None {
		return false
	}
	for i := 0; i < n; i++ {
		if cell(i) != player {
			return false
		}
	}
	return true
}
