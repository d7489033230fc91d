package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"freelance-app/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: make(map[primitive.ObjectID]*models.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notif *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notif.ID = primitive.NewObjectID()
	notif.Read = false
	notif.Archived = false
	notif.CreatedAt = time.Now()
	stored := *notif
	r.items[notif.ID] = &stored
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.items {
		if n.UserID != userID {
			continue
		}
		if n.Archived && !includeArchived {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return models.NotFoundError("notification not found")
	}
	n.Read = true
	return nil
}

func (r *fakeNotificationRepo) MarkReadMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, id := range ids {
		if n, ok := r.items[id]; ok && n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) Archive(ctx context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return models.NotFoundError("notification not found")
	}
	n.Archived = true
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return models.NotFoundError("notification not found")
	}
	delete(r.items, id)
	return nil
}

func (r *fakeNotificationRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if n, ok := r.items[id]; ok && n.UserID == userID {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func eventPayload(t *testing.T, event Event) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestProcessEventStoresNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil, nil)

	payload := eventPayload(t, Event{
		Type:     models.TypeJobApplied,
		UserID:   employer.ID,
		Role:     models.RoleEmployer,
		Message:  "You received a new application for \"Logo design\".",
		SenderID: freelancer.ID,
		Link:     "/jobs/abc",
	})
	if err := svc.ProcessEvent(context.Background(), payload); err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}

	list, err := svc.List(context.Background(), employer.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("stored notifications = %d, want 1", len(list))
	}
	n := list[0]
	if n.Title != "New application" {
		t.Errorf("title = %q, want %q", n.Title, "New application")
	}
	if n.Read || n.Archived {
		t.Errorf("new notification must start unread and unarchived: %+v", n)
	}
	if n.DeliveryType != models.DeliveryPush {
		t.Errorf("delivery = %s, want push", n.DeliveryType)
	}
	if n.SenderID != freelancer.ID || n.Link != "/jobs/abc" {
		t.Errorf("sender/link not carried over: %+v", n)
	}
}

func TestProcessEventTitles(t *testing.T) {
	cases := []struct {
		eventType models.NotificationType
		want      string
	}{
		{models.TypeApplicationAccepted, "Application accepted"},
		{models.TypeApplicationRejected, "Application rejected"},
		{models.TypeJobCompleted, "Job completed"},
		{models.TypeJobClosed, "Job withdrawn"},
		{models.TypeMilestoneRequested, "Milestone approval requested"},
		{models.TypeMilestoneApproved, "Milestone approved"},
		{models.TypeMilestoneRejected, "Milestone rejected"},
		{models.TypePaymentReleased, "Payment released"},
		{models.TypeRatingReceived, "New rating"},
		{models.NotificationType("unknown"), "Notification"},
	}
	for _, tc := range cases {
		if got := titleFor(tc.eventType); got != tc.want {
			t.Errorf("titleFor(%s) = %q, want %q", tc.eventType, got, tc.want)
		}
	}
}

func TestProcessEventKeepsExplicitTitle(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil, nil)

	payload := eventPayload(t, Event{
		Type:    models.TypeSystemMessage,
		UserID:  freelancer.ID,
		Title:   "Scheduled maintenance",
		Message: "The service will be down tonight.",
	})
	if err := svc.ProcessEvent(context.Background(), payload); err != nil {
		t.Fatal(err)
	}
	list, _ := svc.List(context.Background(), freelancer.ID, false)
	if len(list) != 1 || list[0].Title != "Scheduled maintenance" {
		t.Fatalf("stored notifications = %+v", list)
	}
}

func TestProcessEventMalformedPayload(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil, nil)

	if err := svc.ProcessEvent(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("malformed payload accepted")
	}
	if len(repo.items) != 0 {
		t.Fatal("malformed payload must not store a notification")
	}
}

func TestProcessEventEmailDelivery(t *testing.T) {
	repo := newFakeNotificationRepo()
	mailer := &fakeMailer{}
	svc := NewNotificationService(repo, nil, mailer)

	payload := eventPayload(t, Event{
		Type:    models.TypePaymentReleased,
		UserID:  freelancer.ID,
		Email:   "fre@example.com",
		Message: "Payment for milestone was released.",
	})
	if err := svc.ProcessEvent(context.Background(), payload); err != nil {
		t.Fatal(err)
	}

	list, _ := svc.List(context.Background(), freelancer.ID, false)
	if len(list) != 1 || list[0].DeliveryType != models.DeliveryEmail {
		t.Fatalf("stored notifications = %+v", list)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "fre@example.com" {
		t.Fatalf("sent mail = %+v", mailer.sent)
	}
	if mailer.sent[0].subject != "Payment released" {
		t.Errorf("subject = %q, want %q", mailer.sent[0].subject, "Payment released")
	}

	// same event without an address stays in-app only
	payload = eventPayload(t, Event{Type: models.TypePaymentReleased, UserID: freelancer.ID})
	if err := svc.ProcessEvent(context.Background(), payload); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 1 {
		t.Errorf("mail sent without an address: %+v", mailer.sent)
	}
}

func TestNotificationReadAndArchiveOps(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil, nil)
	ctx := context.Background()

	var ids []primitive.ObjectID
	for i := 0; i < 3; i++ {
		n := &models.Notification{UserID: freelancer.ID, Type: models.TypeJobApplied, Message: "m"}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, n.ID)
	}
	foreign := &models.Notification{UserID: employer.ID, Type: models.TypeJobApplied, Message: "m"}
	if err := repo.Create(ctx, foreign); err != nil {
		t.Fatal(err)
	}

	if err := svc.MarkRead(ctx, ids[0], freelancer.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	// another user's notification is invisible
	if err := svc.MarkRead(ctx, foreign.ID, freelancer.ID); err == nil {
		t.Error("marked a foreign notification read")
	}

	updated, err := svc.MarkReadMany(ctx, []primitive.ObjectID{ids[1], foreign.ID}, freelancer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated != 1 {
		t.Errorf("MarkReadMany updated = %d, want 1", updated)
	}

	updated, err = svc.MarkAllRead(ctx, freelancer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated != 1 {
		t.Errorf("MarkAllRead updated = %d, want 1 remaining unread", updated)
	}

	if err := svc.Archive(ctx, ids[2], freelancer.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	visible, _ := svc.List(ctx, freelancer.ID, false)
	if len(visible) != 2 {
		t.Errorf("unarchived list = %d, want 2", len(visible))
	}
	all, _ := svc.List(ctx, freelancer.ID, true)
	if len(all) != 3 {
		t.Errorf("archived-inclusive list = %d, want 3", len(all))
	}

	deleted, err := svc.DeleteMany(ctx, []primitive.ObjectID{ids[0], ids[1], foreign.ID}, freelancer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("DeleteMany deleted = %d, want 2", deleted)
	}
	if err := svc.Delete(ctx, foreign.ID, freelancer.ID); err == nil {
		t.Error("deleted a foreign notification")
	}
	if err := svc.Delete(ctx, foreign.ID, employer.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}
