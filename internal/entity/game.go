package entity

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/board"
)

type State string

const (
	StateInProgress State = "IN_PROGRESS"
	StateDone       State = "DONE"
)

const PlayersPerGame = 2

// DefaultMaxBoardCells caps rows*columns when no other limit is given.
const DefaultMaxBoardCells = 1_000_000

type gameOptions struct {
	maxBoardCells int
}

type GameOption func(*gameOptions)

// WithMaxBoardCells limits the number of cells a new board may have.
func WithMaxBoardCells(maxCells int) GameOption {
	return func(opts *gameOptions) {
		opts.maxBoardCells = maxCells
	}
}

// Game is a single drop token match between two players.
//
// A Game is not safe for concurrent use. The registry serializes access to it.
type Game struct {
	id            string
	players       []string
	activePlayers []string
	board         board.Grid
	lowestEmpty   []int
	turnIndex     int
	state         State
	winner        string
	moves         []Move
	winCondition  int
}

// Summary is a read-only view of a game. Winner is empty while nobody has won.
type Summary struct {
	ID      string
	Players []string
	State   State
	Winner  string
}

func NewGame(id string, players []string, rows, columns, winCondition int, opts ...GameOption) (*Game, error) {
	options := gameOptions{maxBoardCells: DefaultMaxBoardCells}
	for _, opt := range opts {
		opt(&options)
	}

	if err := validateSettings(players, rows, columns, winCondition, options.maxBoardCells); err != nil {
		return nil, err
	}

	lowestEmpty := make([]int, columns)
	for col := range lowestEmpty {
		lowestEmpty[col] = rows - 1
	}

	return &Game{
		id:            id,
		players:       slices.Clone(players),
		activePlayers: slices.Clone(players),
		board:         board.New(rows, columns),
		lowestEmpty:   lowestEmpty,
		state:         StateInProgress,
		winCondition:  winCondition,
	}, nil
}

func validateSettings(players []string, rows, columns, winCondition, maxCells int) error {
	switch {
	case len(players) != PlayersPerGame:
		return fmt.Errorf("%w: need exactly %d players, got %d", apperror.ErrInvalidGameSettings, PlayersPerGame, len(players))
	case players[0] == "" || players[1] == "":
		return fmt.Errorf("%w: player id is empty", apperror.ErrInvalidGameSettings)
	case players[0] == players[1]:
		return fmt.Errorf("%w: players must be distinct", apperror.ErrInvalidGameSettings)
	case rows < 1 || columns < 1:
		return fmt.Errorf("%w: board %dx%d", apperror.ErrInvalidGameSettings, rows, columns)
	case rows > maxCells/columns:
		return fmt.Errorf("%w: board %dx%d has more than %d cells", apperror.ErrInvalidGameSettings, rows, columns, maxCells)
	case winCondition < 1:
		return fmt.Errorf("%w: win condition %d", apperror.ErrInvalidGameSettings, winCondition)
	}

	return nil
}

// PlaceToken drops a token for player into column and returns the move number of the placement.
func (that *Game) PlaceToken(player string, column int) (int, error) {
	if !slices.Contains(that.players, player) {
		return 0, apperror.ErrPlayerNotFound
	}

	if err := that.ConfirmInProgress(); err != nil {
		return 0, err
	}

	if that.players[that.turnIndex] != player {
		return 0, apperror.ErrIllegalTurn
	}

	if column < 0 || column >= len(that.lowestEmpty) {
		return 0, apperror.ErrColumnOutOfBounds
	}

	row := that.lowestEmpty[column]
	if row < 0 {
		return 0, apperror.ErrColumnFull
	}

	that.board[row][column] = that.turnIndex
	moveNumber := len(that.moves)
	that.moves = append(that.moves, Move{Type: MoveTypeMove, Player: player, Column: column})
	that.lowestEmpty[column]--

	if that.isBoardFull() {
		that.state = StateDone
	}

	// a full board with a winning line still has a winner
	if board.CheckWinner(that.board, that.turnIndex, that.winCondition) {
		that.state = StateDone
		that.winner = player
	}

	that.turnIndex = (that.turnIndex + 1) % PlayersPerGame

	return moveNumber, nil
}

// Forfeit removes player from the game and hands the win to the remaining player.
func (that *Game) Forfeit(player string) error {
	if !slices.Contains(that.activePlayers, player) {
		return apperror.ErrPlayerNotFound
	}

	if err := that.ConfirmInProgress(); err != nil {
		return err
	}

	that.moves = append(that.moves, Move{Type: MoveTypeQuit, Player: player})
	that.activePlayers = slices.DeleteFunc(that.activePlayers, func(p string) bool {
		return p == player
	})
	that.state = StateDone
	that.winner = that.activePlayers[0]

	return nil
}

func (that *Game) GetMove(moveNumber int) (Move, error) {
	if moveNumber < 0 || moveNumber >= len(that.moves) {
		return Move{}, apperror.ErrInvalidMoveNumber
	}

	return that.moves[moveNumber], nil
}

// GetMoves returns the moves numbered start through until, both inclusive.
// A nil start means the first move, a nil until means the last one.
func (that *Game) GetMoves(start, until *int) ([]Move, error) {
	from, to := 0, len(that.moves)
	if start != nil {
		from = *start
	}
	if until != nil {
		to = *until + 1
	}

	if from < 0 || to > len(that.moves) || from >= to {
		return nil, apperror.ErrInvalidRange
	}

	return slices.Clone(that.moves[from:to]), nil
}

func (that *Game) isBoardFull() bool {
	for _, row := range that.lowestEmpty {
		if row >= 0 {
			return false
		}
	}

	return true
}

func (that *Game) ConfirmInProgress() error {
	if that.IsFinished() {
		return apperror.ErrGameCompleted
	}

	return nil
}

func (that *Game) IsFinished() bool {
	return that.state == StateDone
}

func (that *Game) IsInProgress() bool {
	return that.state == StateInProgress
}

func (that *Game) ID() string {
	return that.id
}

// Players returns both original players in turn order, including one who forfeited.
func (that *Game) Players() []string {
	return slices.Clone(that.players)
}

func (that *Game) State() State {
	return that.state
}

func (that *Game) Winner() (string, bool) {
	return that.winner, that.winner != ""
}

func (that *Game) MoveCount() int {
	return len(that.moves)
}

func (that *Game) WinCondition() int {
	return that.winCondition
}

// Board returns a copy of the grid.
func (that *Game) Board() board.Grid {
	return that.board.Clone()
}

func (that *Game) Summary() Summary {
	return Summary{
		ID:      that.id,
		Players: that.Players(),
		State:   that.state,
		Winner:  that.winner,
	}
}
