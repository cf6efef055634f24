package entity

// MoveEvent describes a move log entry together with the game state right after it.
type MoveEvent struct {
	GameID     string
	MoveNumber int
	Move       Move
	State      State
	Winner     string
}

func NewMoveEvent(game *Game, moveNumber int, move Move) MoveEvent {
	winner, _ := game.Winner()

	return MoveEvent{
		GameID:     game.ID(),
		MoveNumber: moveNumber,
		Move:       move,
		State:      game.State(),
		Winner:     winner,
	}
}
