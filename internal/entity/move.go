package entity

type MoveType string

const (
	MoveTypeMove MoveType = "MOVE"
	MoveTypeQuit MoveType = "QUIT"
)

// Move is one record of the move log. Column is only meaningful for MoveTypeMove.
type Move struct {
	Type   MoveType
	Player string
	Column int
}

func (that Move) IsQuit() bool {
	return that.Type == MoveTypeQuit
}
