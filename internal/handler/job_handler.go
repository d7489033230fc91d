package handler

import (
	"net/http"

	"freelance-app/internal/models"
	"freelance-app/internal/services"
	"freelance-app/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobHandler struct {
	jobs    services.JobService
	ratings services.RatingService
}

func NewJobHandler(jobs services.JobService, ratings services.RatingService) *JobHandler {
	return &JobHandler{jobs: jobs, ratings: ratings}
}

type createJobRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Domain      string   `json:"domain"`
	Skills      []string `json:"skills"`
	Budget      float64  `json:"budget" validate:"required,gte=5"`
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	if err := utils.GetValidator().Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": utils.FirstError(err)})
		return
	}

	job := models.Job{
		Title:       req.Title,
		Description: req.Description,
		Domain:      req.Domain,
		Skills:      req.Skills,
		Budget:      req.Budget,
	}
	actor := utils.ActorFromContext(c)
	if err := h.jobs.CreateJob(c.Request.Context(), actor, &job); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	filter := make(map[string]interface{})
	if domain := c.Query("domain"); domain != "" {
		filter["domain"] = domain
	}
	if skill := c.Query("skill"); skill != "" {
		filter["skills"] = skill
	}
	if q := c.Query("q"); q != "" {
		filter["title"] = map[string]interface{}{"$regex": q, "$options": "i"}
	}
	jobs, err := h.jobs.SearchJobs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	job, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	actor := utils.ActorFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"job":         job,
		"has_applied": job.HasApplied(actor.ID),
	})
}

func (h *JobHandler) ApplyToJob(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.jobs.ApplyToJob(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application submitted"})
}

func (h *JobHandler) SelectFreelancer(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	freelancerID := c.Param("freelancerId")
	if freelancerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.jobs.SelectFreelancer(c.Request.Context(), actor, id, freelancerID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Freelancer selected"})
}

func (h *JobHandler) CompleteJob(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.jobs.CompleteJob(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job completed"})
}

func (h *JobHandler) CloseJob(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.jobs.CloseJob(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job closed"})
}

type rateRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// RateJob serves both directions of the rating gate: employers rate the
// freelancer, the assigned freelancer rates the employer.
func (h *JobHandler) RateJob(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	actor := utils.ActorFromContext(c)

	if actor.Role == models.RoleFreelancer {
		err = h.ratings.RateEmployer(c.Request.Context(), actor, id, req.Rating, req.Review)
	} else {
		err = h.ratings.RateFreelancer(c.Request.Context(), actor, id, req.Rating, req.Review)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Rating submitted"})
}

func (h *JobHandler) AppliedJobs(c *gin.Context) {
	actor := utils.ActorFromContext(c)
	applied, err := h.jobs.AppliedJobs(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, applied)
}

func (h *JobHandler) EmployerJobs(c *gin.Context) {
	actor := utils.ActorFromContext(c)
	jobs, err := h.jobs.JobsByEmployer(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) FreelancerJobs(c *gin.Context) {
	actor := utils.ActorFromContext(c)
	jobs, err := h.jobs.JobsByFreelancer(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) ListAllJobs(c *gin.Context) {
	jobs, err := h.jobs.ListAllJobs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.jobs.DeleteJob(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}
