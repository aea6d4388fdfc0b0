package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher appends events to the notification stream.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type streamPublisher struct {
	client *redis.Client
}

// NewPublisher creates a Publisher backed by a Redis stream.
func NewPublisher(client *redis.Client) Publisher {
	return &streamPublisher{client: client}
}

func (p *streamPublisher) Publish(ctx context.Context, event Event) error {
	values, err := event.ToMap()
	if err != nil {
		return err
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamNotifications,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", StreamNotifications, err)
	}
	return nil
}
