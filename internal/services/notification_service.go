package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"freelance-app/internal/models"
	"freelance-app/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService persists notifications produced by business events
// and serves the read/archive/delete surface.
type NotificationService struct {
	repo   repository.NotificationRepository
	rdb    *redis.Client
	mailer Mailer
}

func NewNotificationService(repo repository.NotificationRepository, rdb *redis.Client, mailer Mailer) *NotificationService {
	return &NotificationService{repo: repo, rdb: rdb, mailer: mailer}
}

func (s *NotificationService) List(ctx context.Context, userID string, includeArchived bool) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, includeArchived)
}

func (s *NotificationService) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkReadMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error) {
	return s.repo.MarkReadMany(ctx, ids, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Archive(ctx context.Context, id primitive.ObjectID, userID string) error {
	return s.repo.Archive(ctx, id, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *NotificationService) DeleteMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error) {
	return s.repo.DeleteMany(ctx, ids, userID)
}

// ProcessEvent turns a raw job_events payload into a stored notification
// and dispatches email delivery when the event carries an address.
func (s *NotificationService) ProcessEvent(ctx context.Context, payload []byte) error {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	title := event.Title
	if title == "" {
		title = titleFor(event.Type)
	}

	notification := &models.Notification{
		UserID:       event.UserID,
		Role:         event.Role,
		Type:         event.Type,
		Title:        title,
		Message:      event.Message,
		SenderID:     event.SenderID,
		Link:         event.Link,
		DeliveryType: deliveryFor(event.Type),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	if notification.DeliveryType == models.DeliveryEmail && s.mailer != nil && event.Email != "" {
		if err := s.mailer.Send(event.Email, title, event.Message); err != nil {
			log.Printf("Email delivery failed for %s: %v", event.UserID, err)
		}
	}
	return nil
}

func titleFor(t models.NotificationType) string {
	switch t {
	case models.TypeJobApplied:
		return "New application"
	case models.TypeApplicationAccepted:
		return "Application accepted"
	case models.TypeApplicationRejected:
		return "Application rejected"
	case models.TypeJobCompleted:
		return "Job completed"
	case models.TypeJobClosed:
		return "Job withdrawn"
	case models.TypeMilestoneRequested:
		return "Milestone approval requested"
	case models.TypeMilestoneApproved:
		return "Milestone approved"
	case models.TypeMilestoneRejected:
		return "Milestone rejected"
	case models.TypePaymentReleased:
		return "Payment released"
	case models.TypeRatingReceived:
		return "New rating"
	default:
		return "Notification"
	}
}

func deliveryFor(t models.NotificationType) models.DeliveryMethod {
	// payment confirmations go to the inbox as well as email, everything
	// else is in-app only
	if t == models.TypePaymentReleased {
		return models.DeliveryEmail
	}
	return models.DeliveryPush
}

// StartSubscriber consumes the job_events channel until the context is
// cancelled.
func (s *NotificationService) StartSubscriber(ctx context.Context) {
	pubsub := s.rdb.Subscribe(ctx, JobEventsChannel)

	log.Printf("Subscribed to Redis channel: %s", JobEventsChannel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := s.ProcessEvent(ctx, []byte(msg.Payload)); err != nil {
					log.Printf("Error processing event: %v", err)
				}
			case <-ctx.Done():
				log.Println("Stopping notification subscriber...")
				return
			}
		}
	}()
}
