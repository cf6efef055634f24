package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

const basePath = "/drop_token"

type gameUseCase interface {
	CreateGame(ctx context.Context, players []string, rows, columns int) (string, error)
	GetGame(ctx context.Context, id string) (entity.Summary, error)
	ListInProgressGames(ctx context.Context) ([]string, error)
	PlaceToken(ctx context.Context, gameID, playerID string, column int) (int, error)
	Forfeit(ctx context.Context, gameID, playerID string) error
	GetMove(ctx context.Context, gameID string, moveNumber int) (entity.Move, error)
	GetMoves(ctx context.Context, gameID string, start, until *int) ([]entity.Move, error)
	DeleteGame(ctx context.Context, gameID string) error
}

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		srv: &http.Server{
			Handler:      NewRouter(logger, gameUseCase),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// NewRouter wires every drop token route onto a gorilla router.
func NewRouter(logger *slog.Logger, gameUseCase gameUseCase) *mux.Router {
	h := newGameHandlers(logger, gameUseCase)
	ping := NewPingHandler()

	router := mux.NewRouter()
	router.HandleFunc("/ping", ping.PingHandler).Methods(http.MethodGet)

	router.HandleFunc(basePath, h.listGames).Methods(http.MethodGet)
	router.HandleFunc(basePath, h.createGame).Methods(http.MethodPost)
	router.HandleFunc(basePath+"/{gameId}", h.getGame).Methods(http.MethodGet)
	router.HandleFunc(basePath+"/{gameId}", h.deleteGame).Methods(http.MethodDelete)
	router.HandleFunc(basePath+"/{gameId}/moves", h.getMoves).Methods(http.MethodGet)
	router.HandleFunc(basePath+"/{gameId}/moves/{moveNumber}", h.getMove).Methods(http.MethodGet)
	router.HandleFunc(basePath+"/{gameId}/{playerId}", h.placeToken).Methods(http.MethodPost)
	router.HandleFunc(basePath+"/{gameId}/{playerId}", h.forfeit).Methods(http.MethodDelete)

	return router
}

// Start blocks until the server stops. A graceful Shutdown is not reported as an error.
func (that *Server) Start(addr string) error {
	that.srv.Addr = addr

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	that.logger.Info("Shutting down HTTP server")

	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
