package services

import (
	"context"
	"encoding/json"
	"log"

	"freelance-app/internal/models"

	"github.com/redis/go-redis/v9"
)

// JobEventsChannel carries every business event emitted by the lifecycle
// services. The notification subscriber turns them into stored
// notifications.
const JobEventsChannel = "job_events"

type Event struct {
	Type     models.NotificationType `json:"type"`
	UserID   string                  `json:"user_id"`
	Role     string                  `json:"role"`
	Title    string                  `json:"title,omitempty"`
	Message  string                  `json:"message"`
	SenderID string                  `json:"sender_id,omitempty"`
	Link     string                  `json:"link,omitempty"`
	// Email, when set, additionally routes the notification over SMTP.
	// Lifecycle publishers leave it empty: recipients are known only by id
	// until a profile store supplies addresses.
	Email    string            `json:"email,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type redisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) EventPublisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, JobEventsChannel, data).Err()
}

// publish is the fire-and-forget helper used by the lifecycle services: a
// failed notification must never fail the state transition it describes.
func publish(ctx context.Context, events EventPublisher, event Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event: %v", event.Type, err)
	}
}
