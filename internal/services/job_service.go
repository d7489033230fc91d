package services

import (
	"context"
	"fmt"
	"time"

	"freelance-app/internal/config"
	"freelance-app/internal/models"
	"freelance-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppliedJob is the per-application view returned to freelancers: the job
// plus the filter bucket it falls into. A completed job is always reported
// under the completed bucket regardless of the application status.
type AppliedJob struct {
	Job    models.Job               `json:"job"`
	Bucket models.ApplicationBucket `json:"bucket"`
}

type JobService interface {
	CreateJob(ctx context.Context, actor models.Actor, job *models.Job) error
	GetJob(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	SearchJobs(ctx context.Context, filter map[string]interface{}) ([]models.Job, error)
	ListAllJobs(ctx context.Context) ([]models.Job, error)
	JobsByEmployer(ctx context.Context, employerID string) ([]models.Job, error)
	JobsByFreelancer(ctx context.Context, freelancerID string) ([]models.Job, error)
	AppliedJobs(ctx context.Context, freelancerID string) ([]AppliedJob, error)

	ApplyToJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error
	SelectFreelancer(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, freelancerID string) error
	CompleteJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error
	CloseJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error
	DeleteJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error
}

type jobService struct {
	repo   repository.JobRepository
	cache  Cache
	events EventPublisher
	cfg    *config.Config
}

func NewJobService(repo repository.JobRepository, cache Cache, events EventPublisher, cfg *config.Config) JobService {
	return &jobService{repo: repo, cache: cache, events: events, cfg: cfg}
}

const openJobsKey = "jobs:open"

func employerJobsKey(employerID string) string {
	return fmt.Sprintf("jobs:employer:%s", employerID)
}

func (s *jobService) invalidate(ctx context.Context, employerID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, openJobsKey, employerJobsKey(employerID))
}

func (s *jobService) CreateJob(ctx context.Context, actor models.Actor, job *models.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	job.EmployerID = actor.ID
	job.Status = models.JobOpen
	job.FreelancerID = nil
	job.Applicants = nil
	job.Milestones = nil
	job.IsRatedByEmployer = false
	job.IsRatedByFreelancer = false

	if err := s.repo.Create(ctx, job); err != nil {
		return err
	}
	s.invalidate(ctx, actor.ID)
	return nil
}

func (s *jobService) GetJob(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *jobService) SearchJobs(ctx context.Context, filter map[string]interface{}) ([]models.Job, error) {
	query := bson.M{"status": models.JobOpen}
	for k, v := range filter {
		query[k] = v
	}

	// only the unfiltered open listing is cached; filtered searches hit the
	// store directly
	cacheable := len(filter) == 0
	if cacheable && s.cache != nil {
		var cached []models.Job
		if err := s.cache.Get(ctx, openJobsKey, &cached); err == nil {
			return cached, nil
		}
	}

	jobs, err := s.repo.Filter(ctx, query)
	if err != nil {
		return nil, err
	}
	if cacheable && s.cache != nil {
		_ = s.cache.Set(ctx, openJobsKey, jobs, jobCacheTTL)
	}
	return jobs, nil
}

func (s *jobService) ListAllJobs(ctx context.Context) ([]models.Job, error) {
	return s.repo.Filter(ctx, bson.M{})
}

func (s *jobService) JobsByEmployer(ctx context.Context, employerID string) ([]models.Job, error) {
	key := employerJobsKey(employerID)
	if s.cache != nil {
		var cached []models.Job
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}
	jobs, err := s.repo.GetByEmployer(ctx, employerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, jobs, jobCacheTTL)
	}
	return jobs, nil
}

func (s *jobService) JobsByFreelancer(ctx context.Context, freelancerID string) ([]models.Job, error) {
	return s.repo.GetByFreelancer(ctx, freelancerID)
}

func (s *jobService) AppliedJobs(ctx context.Context, freelancerID string) ([]AppliedJob, error) {
	jobs, err := s.repo.GetByApplicant(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	applied := make([]AppliedJob, 0, len(jobs))
	for i := range jobs {
		bucket, ok := jobs[i].BucketFor(freelancerID)
		if !ok {
			continue
		}
		applied = append(applied, AppliedJob{Job: jobs[i], Bucket: bucket})
	}
	return applied, nil
}

func (s *jobService) ApplyToJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID == actor.ID {
		return models.ForbiddenError("cannot apply to your own job")
	}
	if job.HasApplied(actor.ID) {
		return models.ConflictError("already applied to this job")
	}
	if job.Status != models.JobOpen {
		return models.ConflictError("job is not open for applications")
	}

	applicant := models.Applicant{
		FreelancerID: actor.ID,
		Status:       models.ApplicationPending,
		AppliedAt:    time.Now(),
	}
	ok, err := s.repo.AddApplicant(ctx, jobID, applicant)
	if err != nil {
		return err
	}
	if !ok {
		// lost the race: either the job left open or the same freelancer
		// applied concurrently
		current, err := s.repo.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		if current.HasApplied(actor.ID) {
			return models.ConflictError("already applied to this job")
		}
		return models.ConflictError("job is not open for applications")
	}

	s.invalidate(ctx, job.EmployerID)
	publish(ctx, s.events, Event{
		Type:     models.TypeJobApplied,
		UserID:   job.EmployerID,
		Role:     models.RoleEmployer,
		Message:  fmt.Sprintf("You received a new application for %q.", job.Title),
		SenderID: actor.ID,
		Link:     "/jobs/" + jobID.Hex(),
	})
	return nil
}

func (s *jobService) SelectFreelancer(ctx context.Context, actor models.Actor, jobID primitive.ObjectID, freelancerID string) error {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != actor.ID {
		return models.ForbiddenError("Not Authorized")
	}
	if !job.HasApplied(freelancerID) {
		return models.NotFoundError("freelancer has not applied to this job")
	}
	if job.Status != models.JobOpen {
		return models.ConflictError("job is not open")
	}

	ok, err := s.repo.SelectFreelancer(ctx, jobID, freelancerID, s.cfg.RejectOthersOnSelect)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("job is not open")
	}

	s.invalidate(ctx, job.EmployerID)
	publish(ctx, s.events, Event{
		Type:     models.TypeApplicationAccepted,
		UserID:   freelancerID,
		Role:     models.RoleFreelancer,
		Message:  fmt.Sprintf("Your application for %q was accepted.", job.Title),
		SenderID: actor.ID,
		Link:     "/jobs/" + jobID.Hex(),
	})
	if s.cfg.RejectOthersOnSelect {
		for i := range job.Applicants {
			app := &job.Applicants[i]
			if app.FreelancerID == freelancerID || app.Status != models.ApplicationPending {
				continue
			}
			publish(ctx, s.events, Event{
				Type:     models.TypeApplicationRejected,
				UserID:   app.FreelancerID,
				Role:     models.RoleFreelancer,
				Message:  fmt.Sprintf("Your application for %q was not selected.", job.Title),
				SenderID: actor.ID,
				Link:     "/jobs/" + jobID.Hex(),
			})
		}
	}
	return nil
}

func (s *jobService) CompleteJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != actor.ID {
		return models.ForbiddenError("Not Authorized")
	}
	if job.Status != models.JobAssigned {
		return models.ConflictError("job is not assigned")
	}
	if !job.AllMilestonesApproved() {
		return models.ConflictError("job has unapproved milestones")
	}

	ok, err := s.repo.CompleteIfAllApproved(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("job has unapproved milestones")
	}

	s.invalidate(ctx, job.EmployerID)
	s.notifyCompleted(ctx, job)
	return nil
}

func (s *jobService) notifyCompleted(ctx context.Context, job *models.Job) {
	publish(ctx, s.events, Event{
		Type:    models.TypeJobCompleted,
		UserID:  job.EmployerID,
		Role:    models.RoleEmployer,
		Message: fmt.Sprintf("Job %q is completed. You can now rate the freelancer.", job.Title),
		Link:    "/jobs/" + job.ID.Hex(),
	})
	if job.FreelancerID != nil {
		publish(ctx, s.events, Event{
			Type:    models.TypeJobCompleted,
			UserID:  *job.FreelancerID,
			Role:    models.RoleFreelancer,
			Message: fmt.Sprintf("Job %q is completed.", job.Title),
			Link:    "/jobs/" + job.ID.Hex(),
		})
	}
}

func (s *jobService) CloseJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != actor.ID {
		return models.ForbiddenError("Not Authorized")
	}
	if job.Status != models.JobOpen {
		return models.ConflictError("only open jobs can be closed")
	}

	ok, err := s.repo.SetStatus(ctx, jobID, models.JobOpen, models.JobClosed)
	if err != nil {
		return err
	}
	if !ok {
		return models.ConflictError("only open jobs can be closed")
	}

	s.invalidate(ctx, job.EmployerID)
	for i := range job.Applicants {
		if job.Applicants[i].Status != models.ApplicationPending {
			continue
		}
		publish(ctx, s.events, Event{
			Type:    models.TypeJobClosed,
			UserID:  job.Applicants[i].FreelancerID,
			Role:    models.RoleFreelancer,
			Message: fmt.Sprintf("The job %q was withdrawn by the employer.", job.Title),
		})
	}
	return nil
}

// DeleteJob is the admin moderation action: it removes the posting
// entirely, whatever state it is in.
func (s *jobService) DeleteJob(ctx context.Context, actor models.Actor, jobID primitive.ObjectID) error {
	if actor.Role != models.RoleAdmin {
		return models.ForbiddenError("Not Authorized")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, jobID); err != nil {
		return err
	}
	s.invalidate(ctx, job.EmployerID)
	publish(ctx, s.events, Event{
		Type:    models.TypeSystemMessage,
		UserID:  job.EmployerID,
		Role:    models.RoleEmployer,
		Message: fmt.Sprintf("Your job %q was removed by moderation.", job.Title),
	})
	return nil
}
