package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"zonewatch/pkg/chat"
)

// ChatChannel is the Redis Pub/Sub channel every posted chat message is
// mirrored to. The console tails it.
const ChatChannel = "zonewatch:chat"

// Broadcaster publishes chat messages to Redis Pub/Sub. It implements
// chat.Messenger so it can be composed with the host messenger.
type Broadcaster struct {
	client *redis.Client
	logger *slog.Logger
}

var _ chat.Messenger = (*Broadcaster)(nil)

// NewBroadcaster creates a chat broadcaster on an existing Redis client.
func NewBroadcaster(client *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		client: client,
		logger: logger,
	}
}

// Post publishes the message to the chat channel.
func (b *Broadcaster) Post(ctx context.Context, msg chat.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}
	if err := b.client.Publish(ctx, ChatChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish chat message: %w", err)
	}
	b.logger.Debug("Chat message broadcast", "message_id", msg.ID.String())
	return nil
}
