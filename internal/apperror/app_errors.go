package apperror

import "errors"

// Messages are returned to API clients verbatim.
//
//nolint:stylecheck // capitalized and punctuated on purpose
var (
	ErrPlayerNotFound    = errors.New("Player not found.")
	ErrGameCompleted     = errors.New("Game is done.")
	ErrIllegalTurn       = errors.New("Wait for other player to make a move.")
	ErrColumnOutOfBounds = errors.New("Column out of bounds.")
	ErrColumnFull        = errors.New("Column is full.")
	ErrInvalidMoveNumber = errors.New("Invalid move number.")
	ErrInvalidRange      = errors.New("Invalid range.")
	ErrGameNotFound      = errors.New("Game not found.")
)

var (
	ErrGameAlreadyExists   = errors.New("game already exists")
	ErrInvalidGameSettings = errors.New("invalid game settings")
)
