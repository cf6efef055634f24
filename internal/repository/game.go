package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) error
	View(ctx context.Context, id string, fn func(game *entity.Game) error) error
	ListIDs(ctx context.Context, filter func(game *entity.Game) bool) ([]string, error)
	DeleteByID(ctx context.Context, id string) error
	Clear(ctx context.Context)
}

// gameHandle serializes every operation on one game.
type gameHandle struct {
	mu   sync.Mutex
	game *entity.Game
}

type memGame struct {
	mu    sync.RWMutex
	games map[string]*gameHandle
	order []string
}

func NewGameRepository() GameRepository {
	return &memGame{
		games: make(map[string]*gameHandle),
	}
}

func (that *memGame) Create(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[game.ID()]; ok {
		return fmt.Errorf("%w: game id %s", apperror.ErrGameAlreadyExists, game.ID())
	}

	that.games[game.ID()] = &gameHandle{game: game}
	that.order = append(that.order, game.ID())

	return nil
}

// Update runs fn while holding the game's lock. Errors returned by fn are passed through unwrapped.
func (that *memGame) Update(ctx context.Context, id string, fn func(game *entity.Game) error) error {
	handle, err := that.getHandle(ctx, id)
	if err != nil {
		return err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	return fn(handle.game)
}

// View is Update for callers that only read. Games are plain structs so both take the same lock.
func (that *memGame) View(ctx context.Context, id string, fn func(game *entity.Game) error) error {
	return that.Update(ctx, id, fn)
}

// ListIDs returns the ids of the games accepted by filter in creation order. A nil filter accepts every game.
func (that *memGame) ListIDs(_ context.Context, filter func(game *entity.Game) bool) ([]string, error) {
	that.mu.RLock()
	handles := make([]*gameHandle, 0, len(that.order))
	for _, id := range that.order {
		handles = append(handles, that.games[id])
	}
	that.mu.RUnlock()

	ids := make([]string, 0, len(handles))
	for _, handle := range handles {
		handle.mu.Lock()
		accepted := filter == nil || filter(handle.game)
		id := handle.game.ID()
		handle.mu.Unlock()

		if accepted {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (that *memGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return apperror.ErrGameNotFound
	}

	delete(that.games, id)
	for i, existing := range that.order {
		if existing == id {
			that.order = append(that.order[:i], that.order[i+1:]...)
			break
		}
	}

	return nil
}

func (that *memGame) Clear(_ context.Context) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games = make(map[string]*gameHandle)
	that.order = nil
}

func (that *memGame) getHandle(_ context.Context, id string) (*gameHandle, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	handle, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return handle, nil
}
