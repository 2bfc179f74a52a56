package response

import (
	"errors"
	"net/http"

	"ctchen222/tictactoe-grid/internal/api/token"
	"ctchen222/tictactoe-grid/internal/game"
	"ctchen222/tictactoe-grid/internal/repository"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// AsError converts err into the Error reported to the client. Internal
// failures are reported by their status text only.
func AsError(err error) Error {
	code := StatusCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	return NewError(false, code, message)
}

// StatusCode maps a domain error to the HTTP status reported to the client.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidSize),
		errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, game.ErrCellOccupied),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrGameNotStarted):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
