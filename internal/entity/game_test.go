package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/board"
)

const (
	foo = "foo"
	bar = "bar"
)

func newTestGame(t *testing.T, rows, columns, winCondition int) *Game {
	t.Helper()

	game, err := NewGame("123", []string{foo, bar}, rows, columns, winCondition)
	require.NoError(t, err)

	return game
}

// play alternates foo and bar starting with foo.
func play(t *testing.T, game *Game, columns ...int) {
	t.Helper()

	players := [2]string{foo, bar}
	for i, column := range columns {
		_, err := game.PlaceToken(players[i%2], column)
		require.NoError(t, err, "move %d in column %d", i, column)
	}
}

func intPtr(v int) *int {
	return &v
}

func TestNewGame(t *testing.T) {
	t.Run("Creates an in progress game", func(t *testing.T) {
		// When: a 4x5 game is created
		game, err := NewGame("123", []string{foo, bar}, 4, 5, 4)

		// Then: the game starts empty and in progress
		require.NoError(t, err)
		assert.Equal(t, "123", game.ID())
		assert.Equal(t, []string{foo, bar}, game.Players())
		assert.Equal(t, StateInProgress, game.State())
		assert.Equal(t, 0, game.MoveCount())
		assert.Equal(t, 4, game.WinCondition())
		assert.Equal(t, board.New(4, 5), game.Board())

		_, hasWinner := game.Winner()
		assert.False(t, hasWinner)
	})

	t.Run("Rejects invalid settings", func(t *testing.T) {
		cases := []struct {
			name         string
			players      []string
			rows         int
			columns      int
			winCondition int
		}{
			{"one player", []string{foo}, 4, 4, 4},
			{"three players", []string{foo, bar, "baz"}, 4, 4, 4},
			{"same player twice", []string{foo, foo}, 4, 4, 4},
			{"empty player id", []string{foo, ""}, 4, 4, 4},
			{"zero rows", []string{foo, bar}, 0, 4, 4},
			{"negative columns", []string{foo, bar}, 4, -1, 4},
			{"zero win condition", []string{foo, bar}, 4, 4, 0},
			{"board above the default cell limit", []string{foo, bar}, 100_000, 100_000, 4},
			{"single row with max columns", []string{foo, bar}, 1, math.MaxInt, 4},
			{"max rows and columns", []string{foo, bar}, math.MaxInt, math.MaxInt, 4},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				game, err := NewGame("123", tc.players, tc.rows, tc.columns, tc.winCondition)

				require.ErrorIs(t, err, apperror.ErrInvalidGameSettings)
				assert.Nil(t, game)
			})
		}
	})

	t.Run("Honors a custom cell limit", func(t *testing.T) {
		// Given: a limit of 12 cells
		limit := WithMaxBoardCells(12)

		// When: boards just at and just above the limit are created
		game, err := NewGame("123", []string{foo, bar}, 3, 4, 4, limit)
		require.NoError(t, err)
		assert.Equal(t, board.New(3, 4), game.Board())

		tooBig, err := NewGame("123", []string{foo, bar}, 13, 1, 4, limit)

		// Then: only the oversized board is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidGameSettings)
		assert.Nil(t, tooBig)
	})

	t.Run("Caller cannot mutate players after creation", func(t *testing.T) {
		// Given: a players slice used to create a game
		players := []string{foo, bar}
		game, err := NewGame("123", players, 4, 4, 4)
		require.NoError(t, err)

		// When: the caller changes the slice and the returned copy
		players[0] = "mallory"
		game.Players()[1] = "mallory"

		// Then: the game keeps its original players
		assert.Equal(t, []string{foo, bar}, game.Players())
	})
}

func TestGame_PlaceToken(t *testing.T) {
	t.Run("Token falls to the bottom row", func(t *testing.T) {
		// Given: a new 4x4 game
		game := newTestGame(t, 4, 4, 4)

		// When: foo drops into column 1 and bar drops on top of it
		first, err := game.PlaceToken(foo, 1)
		require.NoError(t, err)
		second, err := game.PlaceToken(bar, 1)
		require.NoError(t, err)

		// Then: move numbers are sequential and the tokens stack up from the bottom
		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)

		grid := game.Board()
		assert.Equal(t, 0, grid[3][1])
		assert.Equal(t, 1, grid[2][1])
		assert.Equal(t, board.Empty, grid[1][1])
		assert.Equal(t, StateInProgress, game.State())
	})

	t.Run("Unknown player", func(t *testing.T) {
		game := newTestGame(t, 4, 4, 4)

		_, err := game.PlaceToken("nobody", 0)

		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		assert.Equal(t, 0, game.MoveCount())
	})

	t.Run("Out of turn", func(t *testing.T) {
		// Given: a new game where it is foo's turn
		game := newTestGame(t, 4, 4, 4)

		// When: bar tries to move
		_, err := game.PlaceToken(bar, 0)

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrIllegalTurn)
		assert.Equal(t, 0, game.MoveCount())
		assert.Equal(t, board.New(4, 4), game.Board())

		// And: foo can still move
		_, err = game.PlaceToken(foo, 0)
		require.NoError(t, err)
	})

	t.Run("Column out of bounds", func(t *testing.T) {
		game := newTestGame(t, 4, 4, 4)

		_, err := game.PlaceToken(foo, -1)
		require.ErrorIs(t, err, apperror.ErrColumnOutOfBounds)

		_, err = game.PlaceToken(foo, 4)
		require.ErrorIs(t, err, apperror.ErrColumnOutOfBounds)

		assert.Equal(t, 0, game.MoveCount())
	})

	t.Run("Column full on a single row board", func(t *testing.T) {
		// Given: a board with one row and the first token in column 0
		game := newTestGame(t, 1, 4, 4)
		play(t, game, 0)

		// When: bar drops into the same column
		_, err := game.PlaceToken(bar, 0)

		// Then: the column is full and it is still bar's turn
		require.ErrorIs(t, err, apperror.ErrColumnFull)
		assert.Equal(t, 1, game.MoveCount())

		_, err = game.PlaceToken(bar, 1)
		require.NoError(t, err)
	})

	t.Run("Preconditions are checked in order", func(t *testing.T) {
		// Given: a finished game
		game := newTestGame(t, 4, 4, 4)
		require.NoError(t, game.Forfeit(foo))

		// Then: an unknown player is reported before the finished game
		_, err := game.PlaceToken("nobody", 99)
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)

		// And: a finished game is reported before the turn and the column
		_, err = game.PlaceToken(bar, 99)
		require.ErrorIs(t, err, apperror.ErrGameCompleted)

		// And: a player who forfeited is still one of the original players
		_, err = game.PlaceToken(foo, 0)
		require.ErrorIs(t, err, apperror.ErrGameCompleted)
	})

	t.Run("Turn is checked before the column", func(t *testing.T) {
		game := newTestGame(t, 4, 4, 4)

		_, err := game.PlaceToken(bar, 99)

		require.ErrorIs(t, err, apperror.ErrIllegalTurn)
	})

	t.Run("Vertical win", func(t *testing.T) {
		// Given: a 4x4 game
		game := newTestGame(t, 4, 4, 4)

		// When: bar stacks four tokens in column 2
		play(t, game, 0, 2, 0, 2, 1, 2, 1, 2)

		// Then: bar wins
		assert.Equal(t, StateDone, game.State())
		winner, hasWinner := game.Winner()
		assert.True(t, hasWinner)
		assert.Equal(t, bar, winner)

		grid := game.Board()
		for row := 0; row < 4; row++ {
			assert.Equal(t, 1, grid[row][2])
		}

		// And: no more moves are accepted
		_, err := game.PlaceToken(foo, 3)
		require.ErrorIs(t, err, apperror.ErrGameCompleted)
		assert.Equal(t, 8, game.MoveCount())
	})

	t.Run("Horizontal win", func(t *testing.T) {
		game := newTestGame(t, 4, 4, 4)

		play(t, game, 0, 0, 1, 1, 2, 2, 3)

		winner, _ := game.Winner()
		assert.Equal(t, foo, winner)
		assert.True(t, game.IsFinished())
	})

	t.Run("Diagonal win", func(t *testing.T) {
		// Given: a 4x4 game where foo builds a rising diagonal from the bottom left
		game := newTestGame(t, 4, 4, 4)

		play(t, game, 0, 1, 1, 2, 2, 3, 2, 3, 3, 0, 3)

		// Then: foo owns (3,0) (2,1) (1,2) (0,3)
		winner, hasWinner := game.Winner()
		require.True(t, hasWinner)
		assert.Equal(t, foo, winner)
	})

	t.Run("Draw on a full board", func(t *testing.T) {
		// Given: a 4x4 game
		game := newTestGame(t, 4, 4, 4)

		// When: the board is filled without four in a row
		play(t, game,
			0, 1, 2, 3,
			0, 1, 2, 3,
			0, 1, 2, 3,
			1, 0, 3, 2,
		)

		// Then: the game is done and nobody won
		assert.Equal(t, StateDone, game.State())
		_, hasWinner := game.Winner()
		assert.False(t, hasWinner)
		assert.Equal(t, board.Grid{
			{1, 0, 1, 0},
			{0, 1, 0, 1},
			{0, 1, 0, 1},
			{0, 1, 0, 1},
		}, game.Board())
	})

	t.Run("Winning move on the last empty cell keeps the winner", func(t *testing.T) {
		// Given: a 1x1 board where foo needs a run of one
		game := newTestGame(t, 1, 1, 1)

		// When: foo fills the only cell
		play(t, game, 0)

		// Then: the board is full but foo is the winner
		assert.Equal(t, StateDone, game.State())
		winner, hasWinner := game.Winner()
		assert.True(t, hasWinner)
		assert.Equal(t, foo, winner)
	})

	t.Run("Last cell completes a line on a full board", func(t *testing.T) {
		// Given: a 3x3 game with a win condition of three
		game := newTestGame(t, 3, 3, 3)

		// When: the ninth move fills the board and completes foo's top row
		play(t, game, 0, 0, 0, 1, 1, 2, 1, 2, 2)

		// Then: the game has a winner rather than a draw
		assert.Equal(t, board.Grid{
			{0, 0, 0},
			{1, 0, 1},
			{0, 1, 1},
		}, game.Board())
		winner, hasWinner := game.Winner()
		require.True(t, hasWinner)
		assert.Equal(t, foo, winner)
		assert.Equal(t, StateDone, game.State())
	})

	t.Run("Consecutive moves alternate players", func(t *testing.T) {
		game := newTestGame(t, 6, 7, 4)
		play(t, game, 3, 3, 4, 4, 0, 6)

		moves, err := game.GetMoves(nil, nil)
		require.NoError(t, err)
		for i := 1; i < len(moves); i++ {
			assert.NotEqual(t, moves[i-1].Player, moves[i].Player)
		}
	})
}

func TestGame_Forfeit(t *testing.T) {
	t.Run("Remaining player wins", func(t *testing.T) {
		// Given: a game in progress
		game := newTestGame(t, 4, 4, 4)
		play(t, game, 0)

		// When: foo forfeits
		err := game.Forfeit(foo)

		// Then: bar wins and the quit is logged
		require.NoError(t, err)
		assert.Equal(t, StateDone, game.State())
		winner, _ := game.Winner()
		assert.Equal(t, bar, winner)

		move, err := game.GetMove(1)
		require.NoError(t, err)
		assert.Equal(t, Move{Type: MoveTypeQuit, Player: foo}, move)
		assert.True(t, move.IsQuit())
	})

	t.Run("Player can forfeit out of turn", func(t *testing.T) {
		game := newTestGame(t, 4, 4, 4)

		require.NoError(t, game.Forfeit(bar))

		winner, _ := game.Winner()
		assert.Equal(t, foo, winner)
	})

	t.Run("Unknown player", func(t *testing.T) {
		game := newTestGame(t, 4, 4, 4)

		err := game.Forfeit("nobody")

		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		assert.Equal(t, StateInProgress, game.State())
		assert.Equal(t, 0, game.MoveCount())
	})

	t.Run("Second forfeit fails", func(t *testing.T) {
		// Given: foo already forfeited
		game := newTestGame(t, 4, 4, 4)
		require.NoError(t, game.Forfeit(foo))

		// When: bar forfeits too
		err := game.Forfeit(bar)

		// Then: the game is already completed
		require.ErrorIs(t, err, apperror.ErrGameCompleted)

		// And: foo is no longer an active player
		err = game.Forfeit(foo)
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)

		// And: the winner did not change
		winner, _ := game.Winner()
		assert.Equal(t, bar, winner)
		assert.Equal(t, 1, game.MoveCount())
		assert.Equal(t, []string{foo, bar}, game.Players())
	})

	t.Run("Forfeit after a win", func(t *testing.T) {
		game := newTestGame(t, 4, 4, 4)
		play(t, game, 0, 2, 0, 2, 1, 2, 1, 2)

		err := game.Forfeit(foo)

		require.ErrorIs(t, err, apperror.ErrGameCompleted)
		winner, _ := game.Winner()
		assert.Equal(t, bar, winner)
	})
}

func TestGame_GetMove(t *testing.T) {
	game := newTestGame(t, 4, 4, 4)
	play(t, game, 1, 2)

	t.Run("Returns the move", func(t *testing.T) {
		move, err := game.GetMove(1)

		require.NoError(t, err)
		assert.Equal(t, Move{Type: MoveTypeMove, Player: bar, Column: 2}, move)
		assert.False(t, move.IsQuit())
	})

	t.Run("Out of range", func(t *testing.T) {
		for _, moveNumber := range []int{-1, 2, 100, math.MaxInt, math.MinInt} {
			_, err := game.GetMove(moveNumber)
			require.ErrorIs(t, err, apperror.ErrInvalidMoveNumber)
		}
	})

	t.Run("Empty log", func(t *testing.T) {
		_, err := newTestGame(t, 4, 4, 4).GetMove(0)
		require.ErrorIs(t, err, apperror.ErrInvalidMoveNumber)
	})
}

func TestGame_GetMoves(t *testing.T) {
	game := newTestGame(t, 4, 4, 4)
	play(t, game, 0, 1, 2)
	require.NoError(t, game.Forfeit(bar))

	all := []Move{
		{Type: MoveTypeMove, Player: foo, Column: 0},
		{Type: MoveTypeMove, Player: bar, Column: 1},
		{Type: MoveTypeMove, Player: foo, Column: 2},
		{Type: MoveTypeQuit, Player: bar},
	}

	t.Run("Defaults return every move", func(t *testing.T) {
		moves, err := game.GetMoves(nil, nil)

		require.NoError(t, err)
		assert.Equal(t, all, moves)
	})

	t.Run("Start only", func(t *testing.T) {
		moves, err := game.GetMoves(intPtr(1), nil)

		require.NoError(t, err)
		assert.Equal(t, all[1:], moves)
	})

	t.Run("Until only is inclusive", func(t *testing.T) {
		moves, err := game.GetMoves(nil, intPtr(1))

		require.NoError(t, err)
		assert.Equal(t, all[:2], moves)
	})

	t.Run("Start equal to until returns one move", func(t *testing.T) {
		moves, err := game.GetMoves(intPtr(2), intPtr(2))

		require.NoError(t, err)
		assert.Equal(t, []Move{all[2]}, moves)
	})

	t.Run("Invalid ranges", func(t *testing.T) {
		cases := []struct {
			name         string
			start, until *int
		}{
			{"start after until", intPtr(2), intPtr(1)},
			{"start past the end", intPtr(4), nil},
			{"negative until", nil, intPtr(-1)},
			{"negative start", intPtr(-1), intPtr(1)},
			{"until past the end", intPtr(0), intPtr(4)},
			{"until at max int", nil, intPtr(math.MaxInt)},
			{"start at min int", intPtr(math.MinInt), nil},
			{"start at max int", intPtr(math.MaxInt), intPtr(math.MaxInt)},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				moves, err := game.GetMoves(tc.start, tc.until)

				require.ErrorIs(t, err, apperror.ErrInvalidRange)
				assert.Nil(t, moves)
			})
		}
	})

	t.Run("Empty log has no valid range", func(t *testing.T) {
		_, err := newTestGame(t, 4, 4, 4).GetMoves(nil, nil)
		require.ErrorIs(t, err, apperror.ErrInvalidRange)
	})

	t.Run("Range equals single move lookups", func(t *testing.T) {
		for start := 0; start < len(all); start++ {
			for until := start; until < len(all); until++ {
				moves, err := game.GetMoves(intPtr(start), intPtr(until))
				require.NoError(t, err)

				expected := make([]Move, 0, until-start+1)
				for n := start; n <= until; n++ {
					move, err := game.GetMove(n)
					require.NoError(t, err)
					expected = append(expected, move)
				}

				assert.Equal(t, expected, moves)
			}
		}
	})

	t.Run("Reads do not mutate the log", func(t *testing.T) {
		moves, err := game.GetMoves(nil, nil)
		require.NoError(t, err)
		moves[0].Player = "mallory"

		again, err := game.GetMoves(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, all, again)
		assert.Equal(t, 4, game.MoveCount())
	})
}

func TestGame_Summary(t *testing.T) {
	game := newTestGame(t, 4, 4, 4)
	require.NoError(t, game.Forfeit(foo))

	assert.Equal(t, Summary{
		ID:      "123",
		Players: []string{foo, bar},
		State:   StateDone,
		Winner:  bar,
	}, game.Summary())
}
