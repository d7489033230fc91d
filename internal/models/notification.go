package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	TypeJobApplied          NotificationType = "job_applied"
	TypeApplicationAccepted NotificationType = "application_accepted"
	TypeApplicationRejected NotificationType = "application_rejected"
	TypeJobCompleted        NotificationType = "job_completed"
	TypeJobClosed           NotificationType = "job_closed"
	TypeMilestoneRequested  NotificationType = "milestone_approval_requested"
	TypeMilestoneApproved   NotificationType = "milestone_approved"
	TypeMilestoneRejected   NotificationType = "milestone_rejected"
	TypePaymentReleased     NotificationType = "payment_released"
	TypeRatingReceived      NotificationType = "rating_received"
	TypeSystemMessage       NotificationType = "system_message"
)

type DeliveryMethod string

const (
	DeliveryPush  DeliveryMethod = "push"
	DeliveryEmail DeliveryMethod = "email"
)

type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"user_id" json:"user_id"`
	Role         string             `bson:"role" json:"role"` // employer, freelancer, admin
	Type         NotificationType   `bson:"type" json:"type"`
	Title        string             `bson:"title" json:"title"`
	Message      string             `bson:"message" json:"message"`
	Read         bool               `bson:"read" json:"read"`
	Archived     bool               `bson:"archived" json:"archived"`
	SenderID     string             `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	Link         string             `bson:"link,omitempty" json:"link,omitempty"`
	DeliveryType DeliveryMethod     `bson:"delivery_type" json:"delivery_type"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
