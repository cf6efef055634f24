package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/droptoken-backend/internal/repository/storage"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
	receiveTimeout  = 5 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite carries a throwaway Redis container for integration tests.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *storage.RedisStorage
	Addr    string
}

// New starts a Redis container and connects to it the way the application does.
// Tests are skipped under -short.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	// hard kill in case cleanup never runs
	_ = resource.Expire(expireDuration)

	addr := resource.GetHostPort(redisPort)
	pool.MaxWait = maxWaitDuration

	var redisStorage *storage.RedisStorage
	if err = pool.Retry(func() error {
		var connErr error
		redisStorage, connErr = storage.NewRedisStorage(ctx, addr)
		return connErr
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("redis at %s never became ready: %v", addr, err)
	}

	t.Cleanup(func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			t.Logf("closing redis storage: %v", closeErr)
		}
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Errorf("could not purge redis container: %v", purgeErr)
		}
	})

	return ctx, &Suite{
		T:       t,
		Logger:  logger,
		Storage: redisStorage,
		Addr:    addr,
	}
}

// Subscription listens on a single channel until the test ends.
type Subscription struct {
	t      *testing.T
	pubsub *redis.PubSub
}

// Subscribe listens on channel and returns once Redis has confirmed the subscription,
// so nothing published afterwards is missed.
func (that *Suite) Subscribe(ctx context.Context, channel string) *Subscription {
	that.Helper()

	pubsub := that.Storage.Connection.Subscribe(ctx, channel)
	that.Cleanup(func() {
		_ = pubsub.Close()
	})

	if _, err := pubsub.Receive(ctx); err != nil {
		that.Fatalf("could not subscribe to %s: %v", channel, err)
	}

	return &Subscription{t: that.T, pubsub: pubsub}
}

// Next waits a few seconds for the next message and fails the test if none arrives.
func (that *Subscription) Next(ctx context.Context) *redis.Message {
	that.t.Helper()

	ctx, cancel := context.WithTimeout(ctx, receiveTimeout)
	defer cancel()

	msg, err := that.pubsub.ReceiveMessage(ctx)
	if err != nil {
		that.t.Fatalf("no message received: %v", err)
	}

	return msg
}
