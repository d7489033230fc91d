package services

import (
	"context"
	"sync"
	"time"

	"freelance-app/internal/models"
	"freelance-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeJobRepo mirrors the conditional-update semantics of the Mongo
// repository: every mutator checks the expected prior state under a lock
// and reports whether it matched.
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[primitive.ObjectID]*models.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[primitive.ObjectID]*models.Job)}
}

func copyJob(j *models.Job) *models.Job {
	out := *j
	out.Applicants = append([]models.Applicant(nil), j.Applicants...)
	out.Milestones = append([]models.Milestone(nil), j.Milestones...)
	return &out
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = primitive.NewObjectID()
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	r.jobs[job.ID] = copyJob(job)
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, models.NotFoundError("job not found")
	}
	return copyJob(job), nil
}

func (r *fakeJobRepo) Filter(ctx context.Context, filter bson.M) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Job
	for _, job := range r.jobs {
		if status, ok := filter["status"]; ok && job.Status != status.(models.JobStatus) {
			continue
		}
		out = append(out, *copyJob(job))
	}
	return out, nil
}

func (r *fakeJobRepo) GetByEmployer(ctx context.Context, employerID string) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Job
	for _, job := range r.jobs {
		if job.EmployerID == employerID {
			out = append(out, *copyJob(job))
		}
	}
	return out, nil
}

func (r *fakeJobRepo) GetByFreelancer(ctx context.Context, freelancerID string) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Job
	for _, job := range r.jobs {
		if job.FreelancerID != nil && *job.FreelancerID == freelancerID {
			out = append(out, *copyJob(job))
		}
	}
	return out, nil
}

func (r *fakeJobRepo) GetByApplicant(ctx context.Context, freelancerID string) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Job
	for _, job := range r.jobs {
		if job.HasApplied(freelancerID) {
			out = append(out, *copyJob(job))
		}
	}
	return out, nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return models.NotFoundError("job not found")
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) AddApplicant(ctx context.Context, id primitive.ObjectID, app models.Applicant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobOpen || job.HasApplied(app.FreelancerID) {
		return false, nil
	}
	job.Applicants = append(job.Applicants, app)
	return true, nil
}

func (r *fakeJobRepo) SelectFreelancer(ctx context.Context, id primitive.ObjectID, freelancerID string, rejectOthers bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobOpen || !job.HasApplied(freelancerID) {
		return false, nil
	}
	job.Status = models.JobAssigned
	fid := freelancerID
	job.FreelancerID = &fid
	for i := range job.Applicants {
		switch {
		case job.Applicants[i].FreelancerID == freelancerID:
			job.Applicants[i].Status = models.ApplicationAccepted
		case rejectOthers && job.Applicants[i].Status == models.ApplicationPending:
			job.Applicants[i].Status = models.ApplicationRejected
		}
	}
	return true, nil
}

func (r *fakeJobRepo) SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.JobStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != from {
		return false, nil
	}
	job.Status = to
	return true, nil
}

func (r *fakeJobRepo) CompleteIfAllApproved(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobAssigned || !job.AllMilestonesApproved() {
		return false, nil
	}
	job.Status = models.JobCompleted
	return true, nil
}

func (r *fakeJobRepo) AddMilestone(ctx context.Context, jobID primitive.ObjectID, m models.Milestone) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != models.JobAssigned {
		return false, nil
	}
	job.Milestones = append(job.Milestones, m)
	return true, nil
}

func (r *fakeJobRepo) UpdateMilestone(ctx context.Context, jobID, milestoneID primitive.ObjectID, title string, percentage float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return false, nil
	}
	for i := range job.Milestones {
		m := &job.Milestones[i]
		if m.ID == milestoneID && m.Status == models.MilestonePending {
			m.Title = title
			m.Percentage = percentage
			m.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeJobRepo) RemoveMilestone(ctx context.Context, jobID, milestoneID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return false, nil
	}
	for i := range job.Milestones {
		m := job.Milestones[i]
		if m.ID == milestoneID && m.Status == models.MilestonePending {
			job.Milestones = append(job.Milestones[:i], job.Milestones[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeJobRepo) SetMilestoneStatus(ctx context.Context, jobID, milestoneID primitive.ObjectID, from, to models.MilestoneStatus, feedback string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return false, nil
	}
	for i := range job.Milestones {
		m := &job.Milestones[i]
		if m.ID == milestoneID && m.Status == from {
			m.Status = to
			if feedback != "" {
				m.Feedback = feedback
			}
			m.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeJobRepo) MarkRatedByEmployer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobCompleted || job.IsRatedByEmployer {
		return false, nil
	}
	job.IsRatedByEmployer = true
	return true, nil
}

func (r *fakeJobRepo) MarkRatedByFreelancer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobCompleted || job.IsRatedByFreelancer {
		return false, nil
	}
	job.IsRatedByFreelancer = true
	return true, nil
}

func (r *fakeJobRepo) UnmarkRatedByEmployer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobCompleted || !job.IsRatedByEmployer {
		return false, nil
	}
	job.IsRatedByEmployer = false
	return true, nil
}

func (r *fakeJobRepo) UnmarkRatedByFreelancer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobCompleted || !job.IsRatedByFreelancer {
		return false, nil
	}
	job.IsRatedByFreelancer = false
	return true, nil
}

type fakeRatingRepo struct {
	mu        sync.Mutex
	ratings   []models.Rating
	createErr error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{}
}

func (r *fakeRatingRepo) Create(ctx context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = time.Now()
	r.ratings = append(r.ratings, *rating)
	return nil
}

func (r *fakeRatingRepo) GetByUser(ctx context.Context, userID string) ([]models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rating
	for _, rating := range r.ratings {
		if rating.ToID == userID {
			out = append(out, rating)
		}
	}
	return out, nil
}

func (r *fakeRatingRepo) Exists(ctx context.Context, jobID primitive.ObjectID, fromID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rating := range r.ratings {
		if rating.JobID == jobID && rating.FromID == fromID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRatingRepo) StatsForUser(ctx context.Context, userID string) (*repository.RatingStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stat := &repository.RatingStat{UserID: userID}
	var sum int
	for _, rating := range r.ratings {
		if rating.ToID == userID {
			stat.Count++
			sum += rating.Rating
		}
	}
	if stat.Count > 0 {
		stat.Average = float64(sum) / float64(stat.Count)
	}
	return stat, nil
}

// capturePublisher records emitted events instead of pushing them to Redis.
type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturePublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) byType(t models.NotificationType) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
