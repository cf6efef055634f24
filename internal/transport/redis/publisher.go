package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

const DefaultChannelPrefix = "drop_token"

// Publisher sends every accepted move to a per-game Redis channel.
type Publisher struct {
	client *redis.Client
	prefix string
}

type moveMessage struct {
	GameID     string  `json:"gameId"`
	MoveNumber int     `json:"moveNumber"`
	Type       string  `json:"type"`
	Player     string  `json:"player"`
	Column     *int    `json:"column,omitempty"`
	State      string  `json:"state"`
	Winner     *string `json:"winner,omitempty"`
}

func New(client *redis.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}

	return &Publisher{
		client: client,
		prefix: prefix,
	}
}

// Channel returns the channel the events of gameID are published on.
func (that *Publisher) Channel(gameID string) string {
	return that.prefix + ":game:" + gameID
}

func (that *Publisher) Publish(ctx context.Context, event entity.MoveEvent) error {
	payload, err := json.Marshal(newMoveMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal move event: %w", err)
	}

	if err = that.client.Publish(ctx, that.Channel(event.GameID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish move event: %w", err)
	}

	return nil
}

func newMoveMessage(event entity.MoveEvent) moveMessage {
	msg := moveMessage{
		GameID:     event.GameID,
		MoveNumber: event.MoveNumber,
		Type:       string(event.Move.Type),
		Player:     event.Move.Player,
		State:      string(event.State),
	}

	if !event.Move.IsQuit() {
		column := event.Move.Column
		msg.Column = &column
	}

	if event.Winner != "" {
		winner := event.Winner
		msg.Winner = &winner
	}

	return msg
}

// NopPublisher drops events. It is used when Redis is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, entity.MoveEvent) error {
	return nil
}
