package repository

import (
	"context"
	"errors"
	"time"

	"freelance-app/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JobRepository owns the jobs collection. Every lifecycle transition is a
// single conditional UpdateOne whose filter encodes the expected prior
// state, so two concurrent transitions can never both succeed. Mutating
// methods return false when the condition did not match; callers re-read
// the document to tell the caller why.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	Filter(ctx context.Context, filter bson.M) ([]models.Job, error)
	GetByEmployer(ctx context.Context, employerID string) ([]models.Job, error)
	GetByFreelancer(ctx context.Context, freelancerID string) ([]models.Job, error)
	GetByApplicant(ctx context.Context, freelancerID string) ([]models.Job, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddApplicant(ctx context.Context, id primitive.ObjectID, app models.Applicant) (bool, error)
	SelectFreelancer(ctx context.Context, id primitive.ObjectID, freelancerID string, rejectOthers bool) (bool, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.JobStatus) (bool, error)
	CompleteIfAllApproved(ctx context.Context, id primitive.ObjectID) (bool, error)

	AddMilestone(ctx context.Context, jobID primitive.ObjectID, m models.Milestone) (bool, error)
	UpdateMilestone(ctx context.Context, jobID, milestoneID primitive.ObjectID, title string, percentage float64) (bool, error)
	RemoveMilestone(ctx context.Context, jobID, milestoneID primitive.ObjectID) (bool, error)
	SetMilestoneStatus(ctx context.Context, jobID, milestoneID primitive.ObjectID, from, to models.MilestoneStatus, feedback string) (bool, error)

	MarkRatedByEmployer(ctx context.Context, id primitive.ObjectID) (bool, error)
	MarkRatedByFreelancer(ctx context.Context, id primitive.ObjectID) (bool, error)
	UnmarkRatedByEmployer(ctx context.Context, id primitive.ObjectID) (bool, error)
	UnmarkRatedByFreelancer(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type jobRepository struct {
	collection *mongo.Collection
}

func NewJobRepository(db *mongo.Database) JobRepository {
	return &jobRepository{collection: db.Collection("jobs")}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	job.ID = primitive.NewObjectID()
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	if job.Applicants == nil {
		job.Applicants = []models.Applicant{}
	}
	if job.Milestones == nil {
		job.Milestones = []models.Milestone{}
	}
	_, err := r.collection.InsertOne(ctx, job)
	return err
}

func (r *jobRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var job models.Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NotFoundError("job not found")
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) Filter(ctx context.Context, filter bson.M) ([]models.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var jobs []models.Job
	err = cursor.All(ctx, &jobs)
	return jobs, err
}

func (r *jobRepository) GetByEmployer(ctx context.Context, employerID string) ([]models.Job, error) {
	return r.Filter(ctx, bson.M{"employer_id": employerID})
}

func (r *jobRepository) GetByFreelancer(ctx context.Context, freelancerID string) ([]models.Job, error) {
	return r.Filter(ctx, bson.M{"freelancer_id": freelancerID})
}

func (r *jobRepository) GetByApplicant(ctx context.Context, freelancerID string) ([]models.Job, error) {
	return r.Filter(ctx, bson.M{"applicants.freelancer_id": freelancerID})
}

func (r *jobRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.NotFoundError("job not found")
	}
	return nil
}

// AddApplicant appends the applicant only while the job is still open and
// the freelancer has not applied before.
func (r *jobRepository) AddApplicant(ctx context.Context, id primitive.ObjectID, app models.Applicant) (bool, error) {
	filter := bson.M{
		"_id":                      id,
		"status":                   models.JobOpen,
		"applicants.freelancer_id": bson.M{"$ne": app.FreelancerID},
	}
	update := bson.M{
		"$push": bson.M{"applicants": app},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SelectFreelancer accepts the matching applicant and moves the job to
// assigned in one document update. With rejectOthers the same update flips
// every other pending applicant to rejected.
func (r *jobRepository) SelectFreelancer(ctx context.Context, id primitive.ObjectID, freelancerID string, rejectOthers bool) (bool, error) {
	filter := bson.M{
		"_id":        id,
		"status":     models.JobOpen,
		"applicants": bson.M{"$elemMatch": bson.M{"freelancer_id": freelancerID}},
	}
	set := bson.M{
		"status":                   models.JobAssigned,
		"freelancer_id":            freelancerID,
		"applicants.$[sel].status": models.ApplicationAccepted,
		"updated_at":               time.Now(),
	}
	arrayFilters := []interface{}{
		bson.M{"sel.freelancer_id": freelancerID},
	}
	if rejectOthers {
		set["applicants.$[oth].status"] = models.ApplicationRejected
		arrayFilters = append(arrayFilters, bson.M{
			"oth.freelancer_id": bson.M{"$ne": freelancerID},
			"oth.status":        models.ApplicationPending,
		})
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters})
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set}, opts)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *jobRepository) SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.JobStatus) (bool, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// CompleteIfAllApproved moves an assigned job to completed, but only when
// no milestone is left in a non-approved state.
func (r *jobRepository) CompleteIfAllApproved(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.JobAssigned,
		"milestones": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"status": bson.M{"$ne": models.MilestoneApproved},
		}}},
	}
	update := bson.M{"$set": bson.M{"status": models.JobCompleted, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *jobRepository) AddMilestone(ctx context.Context, jobID primitive.ObjectID, m models.Milestone) (bool, error) {
	filter := bson.M{"_id": jobID, "status": models.JobAssigned}
	update := bson.M{
		"$push": bson.M{"milestones": m},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *jobRepository) UpdateMilestone(ctx context.Context, jobID, milestoneID primitive.ObjectID, title string, percentage float64) (bool, error) {
	filter := bson.M{
		"_id":        jobID,
		"milestones": bson.M{"$elemMatch": bson.M{"id": milestoneID, "status": models.MilestonePending}},
	}
	update := bson.M{"$set": bson.M{
		"milestones.$.title":      title,
		"milestones.$.percentage": percentage,
		"milestones.$.updated_at": time.Now(),
		"updated_at":              time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *jobRepository) RemoveMilestone(ctx context.Context, jobID, milestoneID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": jobID}
	update := bson.M{
		"$pull": bson.M{"milestones": bson.M{"id": milestoneID, "status": models.MilestonePending}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetMilestoneStatus performs the milestone transition keyed by the
// expected prior state, so a concurrent double-approval cannot happen.
func (r *jobRepository) SetMilestoneStatus(ctx context.Context, jobID, milestoneID primitive.ObjectID, from, to models.MilestoneStatus, feedback string) (bool, error) {
	filter := bson.M{
		"_id":        jobID,
		"milestones": bson.M{"$elemMatch": bson.M{"id": milestoneID, "status": from}},
	}
	set := bson.M{
		"milestones.$.status":     to,
		"milestones.$.updated_at": time.Now(),
		"updated_at":              time.Now(),
	}
	if feedback != "" {
		set["milestones.$.feedback"] = feedback
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *jobRepository) MarkRatedByEmployer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.markRated(ctx, id, "is_rated_by_employer")
}

func (r *jobRepository) MarkRatedByFreelancer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.markRated(ctx, id, "is_rated_by_freelancer")
}

// UnmarkRatedByEmployer reverts the rating gate after a failed rating
// insert.
func (r *jobRepository) UnmarkRatedByEmployer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.setRated(ctx, id, "is_rated_by_employer", false)
}

func (r *jobRepository) UnmarkRatedByFreelancer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.setRated(ctx, id, "is_rated_by_freelancer", false)
}

func (r *jobRepository) markRated(ctx context.Context, id primitive.ObjectID, field string) (bool, error) {
	return r.setRated(ctx, id, field, true)
}

func (r *jobRepository) setRated(ctx context.Context, id primitive.ObjectID, field string, value bool) (bool, error) {
	filter := bson.M{"_id": id, "status": models.JobCompleted, field: !value}
	update := bson.M{"$set": bson.M{field: value, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
