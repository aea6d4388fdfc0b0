package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Message is a single entry read from the notification stream. Err is set
// when the payload failed to parse; the entry is still surfaced so the caller
// can ack it, otherwise it would sit in the pending list forever.
type Message struct {
	ID    string // Redis message ID (e.g., "1702000000000-0")
	Event Event
	Err   error
}

// Consumer reads events from a stream on behalf of a consumer group.
type Consumer interface {
	// EnsureGroup creates the consumer group if it doesn't exist. Called
	// once at worker startup.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read blocks for up to block waiting for new messages delivered to
	// this consumer.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending re-reads messages that were delivered to this consumer
	// but never acknowledged. Used once at startup to recover from crashes.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)

	// Ack removes messages from the consumer's pending list.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error
}

type redisConsumer struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

// NewConsumer creates a Consumer backed by Redis Streams.
func NewConsumer(client *redis.Client, log *zap.SugaredLogger) Consumer {
	return &redisConsumer{client: client, log: log}
}

func (c *redisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	// "0" starts the group at the beginning of the stream so events
	// published before the first worker boot are not lost.
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}
	c.log.Infow("consumer group created", "stream", stream, "group", group)
	return nil
}

func (c *redisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	// ">" reads only messages not yet delivered to any consumer.
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}
	return c.collect(streams), nil
}

func (c *redisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	// "0" instead of ">" replays this consumer's unacknowledged messages.
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup pending: %w", err)
	}
	return c.collect(streams), nil
}

func (c *redisConsumer) collect(streams []redis.XStream) []Message {
	var messages []Message
	for _, s := range streams {
		for _, msg := range s.Messages {
			event, err := ParseEvent(msg.Values)
			if err != nil {
				c.log.Warnw("malformed stream message", "id", msg.ID, "error", err)
				messages = append(messages, Message{ID: msg.ID, Err: err})
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Event: event})
		}
	}
	return messages
}

func (c *redisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}
