package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxReviewLength caps the free-text review attached to a rating.
const MaxReviewLength = 1000

type Rating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID     primitive.ObjectID `bson:"job_id" json:"job_id"`
	FromID    string             `bson:"from_id" json:"from_id"`
	ToID      string             `bson:"to_id" json:"to_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

func (r *Rating) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ValidationError("rating must be between 1 and 5")
	}
	if len(r.Review) > MaxReviewLength {
		return ValidationError("review must be at most 1000 characters")
	}
	return nil
}
