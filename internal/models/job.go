package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobStatus string

const (
	JobOpen      JobStatus = "open"
	JobAssigned  JobStatus = "assigned"
	JobCompleted JobStatus = "completed"
	JobClosed    JobStatus = "closed"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// MinBudget is the smallest budget a job may be posted with.
const MinBudget = 5

type Job struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title               string             `bson:"title" json:"title"`
	Description         string             `bson:"description" json:"description"`
	Domain              string             `bson:"domain,omitempty" json:"domain,omitempty"`
	Skills              []string           `bson:"skills,omitempty" json:"skills,omitempty"`
	Budget              float64            `bson:"budget" json:"budget"`
	Status              JobStatus          `bson:"status" json:"status"`
	EmployerID          string             `bson:"employer_id" json:"employer_id"`
	FreelancerID        *string            `bson:"freelancer_id,omitempty" json:"freelancer_id,omitempty"`
	Applicants          []Applicant        `bson:"applicants" json:"applicants"`
	Milestones          []Milestone        `bson:"milestones" json:"milestones"`
	IsRatedByEmployer   bool               `bson:"is_rated_by_employer" json:"is_rated_by_employer"`
	IsRatedByFreelancer bool               `bson:"is_rated_by_freelancer" json:"is_rated_by_freelancer"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

type Applicant struct {
	FreelancerID string            `bson:"freelancer_id" json:"freelancer_id"`
	Status       ApplicationStatus `bson:"status" json:"status"`
	AppliedAt    time.Time         `bson:"applied_at" json:"applied_at"`
}

func (j *Job) Validate() error {
	if j.Title == "" {
		return ValidationError("title is required")
	}
	if j.Description == "" {
		return ValidationError("description is required")
	}
	if j.Budget < MinBudget {
		return ValidationError("budget must be at least 5")
	}
	return nil
}

// Applicant returns the application entry of the given freelancer, if any.
func (j *Job) Applicant(freelancerID string) (*Applicant, bool) {
	for i := range j.Applicants {
		if j.Applicants[i].FreelancerID == freelancerID {
			return &j.Applicants[i], true
		}
	}
	return nil, false
}

// HasApplied is the derived flag the UI shows on job cards. It is computed,
// never stored.
func (j *Job) HasApplied(freelancerID string) bool {
	_, ok := j.Applicant(freelancerID)
	return ok
}

// IsParty reports whether the user is the employer or the assigned
// freelancer of the job.
func (j *Job) IsParty(userID string) bool {
	if j.EmployerID == userID {
		return true
	}
	return j.FreelancerID != nil && *j.FreelancerID == userID
}

// ApplicationBucket is the filter bucket a job falls into from a given
// applicant's point of view.
type ApplicationBucket string

const (
	BucketPending   ApplicationBucket = "pending"
	BucketAccepted  ApplicationBucket = "accepted"
	BucketRejected  ApplicationBucket = "rejected"
	BucketCompleted ApplicationBucket = "completed"
)

// BucketFor categorizes the job for the given applicant. A completed job
// always lands in the completed bucket, whatever the application status is.
func (j *Job) BucketFor(freelancerID string) (ApplicationBucket, bool) {
	app, ok := j.Applicant(freelancerID)
	if !ok {
		return "", false
	}
	if j.Status == JobCompleted {
		return BucketCompleted, true
	}
	switch app.Status {
	case ApplicationAccepted:
		return BucketAccepted, true
	case ApplicationRejected:
		return BucketRejected, true
	default:
		return BucketPending, true
	}
}

// AllMilestonesApproved reports whether every milestone on the job has
// reached its terminal approved state. A job without milestones counts as
// resolved.
func (j *Job) AllMilestonesApproved() bool {
	for i := range j.Milestones {
		if j.Milestones[i].Status != MilestoneApproved {
			return false
		}
	}
	return true
}

// TotalMilestonePercentage sums the percentage shares of all milestones.
func (j *Job) TotalMilestonePercentage() float64 {
	var total float64
	for i := range j.Milestones {
		total += j.Milestones[i].Percentage
	}
	return total
}

// Milestone returns the milestone with the given id, if present.
func (j *Job) Milestone(id primitive.ObjectID) (*Milestone, bool) {
	for i := range j.Milestones {
		if j.Milestones[i].ID == id {
			return &j.Milestones[i], true
		}
	}
	return nil, false
}
