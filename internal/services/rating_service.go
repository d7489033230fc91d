package services

import (
	"context"
	"fmt"
	"log"

	"freelance-app/internal/models"
	"freelance-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingService interface {
	RateFreelancer(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, rating int, review string) error
	RateEmployer(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, rating int, review string) error
	RatingsForUser(ctx context.Context, userID string) ([]models.Rating, error)
	StatsForUser(ctx context.Context, userID string) (*repository.RatingStat, error)
}

type ratingService struct {
	jobs    repository.JobRepository
	ratings repository.RatingRepository
	events  EventPublisher
}

func NewRatingService(jobs repository.JobRepository, ratings repository.RatingRepository, events EventPublisher) RatingService {
	return &ratingService{jobs: jobs, ratings: ratings, events: events}
}

// RateFreelancer is the one-shot employer review. Precondition checks run
// in a fixed order and the first failure wins: job exists, caller is the
// employer, the job is completed, the employer has not rated yet.
func (s *ratingService) RateFreelancer(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, rating int, review string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != actor.ID {
		return models.ForbiddenError("Not Authorized")
	}
	if job.Status != models.JobCompleted {
		return models.ConflictError("Job Not Completed")
	}
	if job.IsRatedByEmployer {
		return models.ConflictError("Already Rated")
	}
	if job.FreelancerID == nil {
		return models.ConflictError("Job Not Completed")
	}
	// the flag is authoritative, the stored-rating check catches a flag that
	// was lost or reset out of band
	exists, err := s.ratings.Exists(ctx, jobID, actor.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ConflictError("Already Rated")
	}

	entry := &models.Rating{
		JobID:  jobID,
		FromID: actor.ID,
		ToID:   *job.FreelancerID,
		Rating: rating,
		Review: review,
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	// the gate flag is flipped first, conditionally, so a concurrent second
	// rating fails before anything is persisted
	ok, err := s.jobs.MarkRatedByEmployer(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("Already Rated")
	}
	if err := s.ratings.Create(ctx, entry); err != nil {
		// roll the gate back so the job is not left rated with no rating
		// stored
		if _, rbErr := s.jobs.UnmarkRatedByEmployer(ctx, jobID); rbErr != nil {
			log.Printf("failed to revert rating flag on job %s: %v", jobID.Hex(), rbErr)
		}
		return err
	}

	publish(ctx, s.events, Event{
		Type:     models.TypeRatingReceived,
		UserID:   entry.ToID,
		Role:     models.RoleFreelancer,
		Message:  fmt.Sprintf("You received a %d-star rating for %q.", rating, job.Title),
		SenderID: actor.ID,
		Link:     "/jobs/" + jobID.Hex(),
	})
	return nil
}

// RateEmployer is the symmetric freelancer-side gate.
func (s *ratingService) RateEmployer(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, rating int, review string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.FreelancerID == nil || *job.FreelancerID != actor.ID {
		return models.ForbiddenError("Not Authorized")
	}
	if job.Status != models.JobCompleted {
		return models.ConflictError("Job Not Completed")
	}
	if job.IsRatedByFreelancer {
		return models.ConflictError("Already Rated")
	}
	exists, err := s.ratings.Exists(ctx, jobID, actor.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ConflictError("Already Rated")
	}

	entry := &models.Rating{
		JobID:  jobID,
		FromID: actor.ID,
		ToID:   job.EmployerID,
		Rating: rating,
		Review: review,
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	ok, err := s.jobs.MarkRatedByFreelancer(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("Already Rated")
	}
	if err := s.ratings.Create(ctx, entry); err != nil {
		if _, rbErr := s.jobs.UnmarkRatedByFreelancer(ctx, jobID); rbErr != nil {
			log.Printf("failed to revert rating flag on job %s: %v", jobID.Hex(), rbErr)
		}
		return err
	}

	publish(ctx, s.events, Event{
		Type:     models.TypeRatingReceived,
		UserID:   entry.ToID,
		Role:     models.RoleEmployer,
		Message:  fmt.Sprintf("You received a %d-star rating for %q.", rating, job.Title),
		SenderID: actor.ID,
		Link:     "/jobs/" + jobID.Hex(),
	})
	return nil
}

func (s *ratingService) RatingsForUser(ctx context.Context, userID string) ([]models.Rating, error) {
	return s.ratings.GetByUser(ctx, userID)
}

func (s *ratingService) StatsForUser(ctx context.Context, userID string) (*repository.RatingStat, error) {
	return s.ratings.StatsForUser(ctx, userID)
}
