package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) error
	View(ctx context.Context, id string, fn func(game *entity.Game) error) error
	ListIDs(ctx context.Context, filter func(game *entity.Game) bool) ([]string, error)
	DeleteByID(ctx context.Context, id string) error
	Clear(ctx context.Context)
}

type movePublisher interface {
	Publish(ctx context.Context, event entity.MoveEvent) error
}

// GameManager is the registry-facing side of the engine: it owns game ids and win condition,
// serializes access per game and announces accepted moves.
type GameManager struct {
	logger    *slog.Logger
	gameRepo  gameRepo
	publisher movePublisher

	winCondition  int
	maxBoardCells int
	newID         func() string
}

func NewGameManager(
	logger *slog.Logger, gameRepo gameRepo, publisher movePublisher, winCondition, maxBoardCells int,
) *GameManager {
	return &GameManager{
		logger:    logger.With("component", "game_manager"),
		gameRepo:  gameRepo,
		publisher: publisher,

		winCondition:  winCondition,
		maxBoardCells: maxBoardCells,
		newID:         uuid.NewString,
	}
}

func (that *GameManager) CreateGame(ctx context.Context, players []string, rows, columns int) (string, error) {
	game, err := entity.NewGame(that.newID(), players, rows, columns, that.winCondition,
		entity.WithMaxBoardCells(that.maxBoardCells))
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.gameRepo.Create(ctx, game); err != nil {
		return "", fmt.Errorf("failed to save game: %w", err)
	}

	that.logger.Info("game created",
		"game_id", game.ID(), "rows", rows, "columns", columns, "win_condition", game.WinCondition())

	return game.ID(), nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (entity.Summary, error) {
	var summary entity.Summary

	err := that.gameRepo.View(ctx, id, func(game *entity.Game) error {
		summary = game.Summary()
		return nil
	})
	if err != nil {
		return entity.Summary{}, fmt.Errorf("failed to get game: %w", err)
	}

	return summary, nil
}

func (that *GameManager) ListInProgressGames(ctx context.Context) ([]string, error) {
	ids, err := that.gameRepo.ListIDs(ctx, (*entity.Game).IsInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return ids, nil
}

func (that *GameManager) PlaceToken(ctx context.Context, gameID, playerID string, column int) (int, error) {
	var (
		moveNumber int
		event      entity.MoveEvent
	)

	err := that.gameRepo.Update(ctx, gameID, func(game *entity.Game) error {
		var err error
		if moveNumber, err = game.PlaceToken(playerID, column); err != nil {
			return err
		}

		move, err := game.GetMove(moveNumber)
		if err != nil {
			return err
		}
		event = entity.NewMoveEvent(game, moveNumber, move)

		if game.IsFinished() {
			that.logger.Debug("final board", "game_id", gameID, "board", game.Board())
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to place token: %w", err)
	}

	that.announce(ctx, event)

	return moveNumber, nil
}

func (that *GameManager) Forfeit(ctx context.Context, gameID, playerID string) error {
	var event entity.MoveEvent

	err := that.gameRepo.Update(ctx, gameID, func(game *entity.Game) error {
		if err := game.Forfeit(playerID); err != nil {
			return err
		}

		moveNumber := game.MoveCount() - 1
		move, err := game.GetMove(moveNumber)
		if err != nil {
			return err
		}
		event = entity.NewMoveEvent(game, moveNumber, move)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to forfeit: %w", err)
	}

	that.announce(ctx, event)

	return nil
}

func (that *GameManager) GetMove(ctx context.Context, gameID string, moveNumber int) (entity.Move, error) {
	var move entity.Move

	err := that.gameRepo.View(ctx, gameID, func(game *entity.Game) error {
		var err error
		move, err = game.GetMove(moveNumber)
		return err
	})
	if err != nil {
		return entity.Move{}, fmt.Errorf("failed to get move: %w", err)
	}

	return move, nil
}

func (that *GameManager) GetMoves(ctx context.Context, gameID string, start, until *int) ([]entity.Move, error) {
	var moves []entity.Move

	err := that.gameRepo.View(ctx, gameID, func(game *entity.Game) error {
		var err error
		moves, err = game.GetMoves(start, until)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	return moves, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, gameID string) error {
	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "game_id", gameID)

	return nil
}

// Shutdown drops every game. Games only live as long as the process.
func (that *GameManager) Shutdown(ctx context.Context) {
	that.gameRepo.Clear(ctx)
	that.logger.Info("games cleared")
}

// announce publishes an accepted move. The move already happened, so a failure is only logged.
func (that *GameManager) announce(ctx context.Context, event entity.MoveEvent) {
	log := that.logger.With("method", "announce", "game_id", event.GameID, "move_number", event.MoveNumber)

	if err := that.publisher.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("failed to publish move", "error", err)
	}

	if event.State == entity.StateDone {
		log.Info("game finished", "winner", event.Winner)
	}
}
