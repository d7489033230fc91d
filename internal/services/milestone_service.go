package services

import (
	"context"
	"fmt"
	"time"

	"freelance-app/internal/models"
	"freelance-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MilestoneService interface {
	AddMilestone(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, m *models.Milestone) error
	UpdateMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID, title string, percentage float64) error
	DeleteMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID) error
	RequestApproval(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID) error
	ApproveMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID) error
	RejectMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID, feedback string) error
}

type milestoneService struct {
	repo   repository.JobRepository
	cache  Cache
	events EventPublisher
}

func NewMilestoneService(repo repository.JobRepository, cache Cache, events EventPublisher) MilestoneService {
	return &milestoneService{repo: repo, cache: cache, events: events}
}

// loadForParty fetches the job and checks the actor is one of its two
// parties. Milestone operations are never visible to anyone else.
func (s *milestoneService) loadForParty(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) (*models.Job, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParty(actor.ID) {
		return nil, models.ForbiddenError("Not Authorized")
	}
	return job, nil
}

func (s *milestoneService) AddMilestone(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, m *models.Milestone) error {
	job, err := s.loadForParty(ctx, actor, jobID)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if job.Status != models.JobAssigned {
		return models.ConflictError("milestones can only be added to an assigned job")
	}
	if job.TotalMilestonePercentage()+m.Percentage > 100 {
		return models.ValidationError("milestone percentages cannot exceed 100%")
	}

	m.ID = primitive.NewObjectID()
	m.Status = models.MilestonePending
	m.Feedback = ""
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	ok, err := s.repo.AddMilestone(ctx, jobID, *m)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("milestones can only be added to an assigned job")
	}
	s.invalidate(ctx, job)
	return nil
}

func (s *milestoneService) UpdateMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID, title string, percentage float64) error {
	job, err := s.loadForParty(ctx, actor, jobID)
	if err != nil {
		return err
	}
	current, okFound := job.Milestone(milestoneID)
	if !okFound {
		return models.NotFoundError("milestone not found")
	}
	updated := models.Milestone{Title: title, Percentage: percentage}
	if err := updated.Validate(); err != nil {
		return err
	}
	if current.Status != models.MilestonePending {
		return models.ConflictError("only pending milestones can be updated")
	}
	if job.TotalMilestonePercentage()-current.Percentage+percentage > 100 {
		return models.ValidationError("milestone percentages cannot exceed 100%")
	}

	ok, err := s.repo.UpdateMilestone(ctx, jobID, milestoneID, title, percentage)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("only pending milestones can be updated")
	}
	s.invalidate(ctx, job)
	return nil
}

func (s *milestoneService) DeleteMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID) error {
	job, err := s.loadForParty(ctx, actor, jobID)
	if err != nil {
		return err
	}
	current, okFound := job.Milestone(milestoneID)
	if !okFound {
		return models.NotFoundError("milestone not found")
	}
	if current.Status != models.MilestonePending {
		return models.ConflictError("only pending milestones can be deleted")
	}

	ok, err := s.repo.RemoveMilestone(ctx, jobID, milestoneID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("only pending milestones can be deleted")
	}
	s.invalidate(ctx, job)
	return nil
}

func (s *milestoneService) RequestApproval(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID) error {
	job, err := s.loadForParty(ctx, actor, jobID)
	if err != nil {
		return err
	}
	if job.FreelancerID == nil || *job.FreelancerID != actor.ID {
		return models.ForbiddenError("only the assigned freelancer can request approval")
	}
	current, okFound := job.Milestone(milestoneID)
	if !okFound {
		return models.NotFoundError("milestone not found")
	}
	if !current.Status.CanTransition(models.MilestoneApprovalRequested) {
		return models.ConflictError("milestone is not awaiting submission")
	}

	ok, err := s.repo.SetMilestoneStatus(ctx, jobID, milestoneID, current.Status, models.MilestoneApprovalRequested, "")
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("milestone is not awaiting submission")
	}

	s.invalidate(ctx, job)
	publish(ctx, s.events, Event{
		Type:     models.TypeMilestoneRequested,
		UserID:   job.EmployerID,
		Role:     models.RoleEmployer,
		Message:  fmt.Sprintf("Approval requested for milestone %q on %q.", current.Title, job.Title),
		SenderID: actor.ID,
		Link:     "/jobs/" + jobID.Hex(),
	})
	return nil
}

func (s *milestoneService) ApproveMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID) error {
	job, err := s.loadForParty(ctx, actor, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != actor.ID {
		return models.ForbiddenError("only the employer can approve a milestone")
	}
	current, okFound := job.Milestone(milestoneID)
	if !okFound {
		return models.NotFoundError("milestone not found")
	}
	if !current.Status.CanTransition(models.MilestoneApproved) {
		return models.ConflictError("milestone approval was not requested")
	}

	ok, err := s.repo.SetMilestoneStatus(ctx, jobID, milestoneID, models.MilestoneApprovalRequested, models.MilestoneApproved, "")
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("milestone approval was not requested")
	}
	s.invalidate(ctx, job)

	if job.FreelancerID != nil {
		publish(ctx, s.events, Event{
			Type:     models.TypeMilestoneApproved,
			UserID:   *job.FreelancerID,
			Role:     models.RoleFreelancer,
			Message:  fmt.Sprintf("Milestone %q on %q was approved.", current.Title, job.Title),
			SenderID: actor.ID,
			Link:     "/jobs/" + jobID.Hex(),
		})
		// escrow release for the approved share
		publish(ctx, s.events, Event{
			Type:    models.TypePaymentReleased,
			UserID:  *job.FreelancerID,
			Role:    models.RoleFreelancer,
			Message: fmt.Sprintf("Payment for milestone %q (%.0f%% of %.2f) was released.", current.Title, current.Percentage, job.Budget),
			Metadata: map[string]string{
				"job_id":       jobID.Hex(),
				"milestone_id": milestoneID.Hex(),
			},
		})
	}

	// approving the last outstanding milestone completes the job
	completed, err := s.repo.CompleteIfAllApproved(ctx, jobID)
	if err != nil {
		return err
	}
	if completed {
		s.notifyCompleted(ctx, job)
	}
	return nil
}

func (s *milestoneService) RejectMilestone(ctx context.Context, actor models.Actor, jobID, milestoneID primitive.ObjectID, feedback string) error {
	job, err := s.loadForParty(ctx, actor, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != actor.ID {
		return models.ForbiddenError("only the employer can reject a milestone")
	}
	if feedback == "" {
		return models.ValidationError("feedback is required when rejecting a milestone")
	}
	current, okFound := job.Milestone(milestoneID)
	if !okFound {
		return models.NotFoundError("milestone not found")
	}
	if !current.Status.CanTransition(models.MilestoneRejected) {
		return models.ConflictError("milestone approval was not requested")
	}

	ok, err := s.repo.SetMilestoneStatus(ctx, jobID, milestoneID, models.MilestoneApprovalRequested, models.MilestoneRejected, feedback)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("milestone approval was not requested")
	}

	s.invalidate(ctx, job)
	if job.FreelancerID != nil {
		publish(ctx, s.events, Event{
			Type:     models.TypeMilestoneRejected,
			UserID:   *job.FreelancerID,
			Role:     models.RoleFreelancer,
			Message:  fmt.Sprintf("Milestone %q on %q was rejected: %s", current.Title, job.Title, feedback),
			SenderID: actor.ID,
			Link:     "/jobs/" + jobID.Hex(),
		})
	}
	return nil
}

func (s *milestoneService) invalidate(ctx context.Context, job *models.Job) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, openJobsKey, employerJobsKey(job.EmployerID))
}

func (s *milestoneService) notifyCompleted(ctx context.Context, job *models.Job) {
	publish(ctx, s.events, Event{
		Type:    models.TypeJobCompleted,
		UserID:  job.EmployerID,
		Role:    models.RoleEmployer,
		Message: fmt.Sprintf("All milestones on %q are approved. The job is completed.", job.Title),
		Link:    "/jobs/" + job.ID.Hex(),
	})
	if job.FreelancerID != nil {
		publish(ctx, s.events, Event{
			Type:    models.TypeJobCompleted,
			UserID:  *job.FreelancerID,
			Role:    models.RoleFreelancer,
			Message: fmt.Sprintf("All milestones on %q are approved. The job is completed.", job.Title),
			Link:    "/jobs/" + job.ID.Hex(),
		})
	}
}
