package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/droptoken-backend/internal/config"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
	"github.com/rocketscienceinc/droptoken-backend/internal/repository"
	"github.com/rocketscienceinc/droptoken-backend/internal/repository/storage"
	"github.com/rocketscienceinc/droptoken-backend/internal/transport/redis"
	"github.com/rocketscienceinc/droptoken-backend/internal/usecase"
	"github.com/rocketscienceinc/droptoken-backend/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type movePublisher interface {
	Publish(ctx context.Context, event entity.MoveEvent) error
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var publisher movePublisher = redis.NopPublisher{}

	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		publisher = redis.New(redisStorage.Connection, conf.Redis.ChannelPrefix)
		log.Info("Publishing moves to redis", "addr", redisAddrString)
	}

	gameRepo := repository.NewGameRepository()
	gameUseCase := usecase.NewGameManager(logger, gameRepo, publisher, conf.WinCondition, conf.MaxBoardCells)
	defer gameUseCase.Shutdown(context.Background())

	server := rest.New(logger, gameUseCase)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := server.Start(":" + conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	return nil
}
