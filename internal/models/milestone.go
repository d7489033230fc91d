package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MilestoneStatus string

const (
	MilestonePending           MilestoneStatus = "pending"
	MilestoneApprovalRequested MilestoneStatus = "approval_requested"
	MilestoneApproved          MilestoneStatus = "approved"
	MilestoneRejected          MilestoneStatus = "rejected"
)

type Milestone struct {
	ID         primitive.ObjectID `bson:"id" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Percentage float64            `bson:"percentage" json:"percentage"`
	Status     MilestoneStatus    `bson:"status" json:"status"`
	Feedback   string             `bson:"feedback,omitempty" json:"feedback,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

func (m *Milestone) Validate() error {
	if m.Title == "" {
		return ValidationError("milestone title is required")
	}
	if m.Percentage <= 0 || m.Percentage > 100 {
		return ValidationError("milestone percentage must be between 0 and 100")
	}
	return nil
}

// CanTransition reports whether the milestone state machine allows moving
// from s to the target state. Approved is terminal.
func (s MilestoneStatus) CanTransition(to MilestoneStatus) bool {
	switch s {
	case MilestonePending:
		return to == MilestoneApprovalRequested
	case MilestoneApprovalRequested:
		return to == MilestoneApproved || to == MilestoneRejected
	case MilestoneRejected:
		// rejected work may be resubmitted
		return to == MilestoneApprovalRequested
	case MilestoneApproved:
		return false
	}
	return false
}
