package handler

import (
	"net/http"

	"freelance-app/internal/models"
	"freelance-app/internal/services"
	"freelance-app/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MilestoneHandler struct {
	milestones services.MilestoneService
}

func NewMilestoneHandler(milestones services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestones: milestones}
}

func milestoneIDs(c *gin.Context) (jobID, milestoneID primitive.ObjectID, ok bool) {
	jobID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return jobID, milestoneID, false
	}
	milestoneID, err = primitive.ObjectIDFromHex(c.Param("milestoneId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid milestone ID"})
		return jobID, milestoneID, false
	}
	return jobID, milestoneID, true
}

type milestoneRequest struct {
	Title      string  `json:"title" validate:"required"`
	Percentage float64 `json:"percentage" validate:"required,gt=0,lte=100"`
}

func (h *MilestoneHandler) AddMilestone(c *gin.Context) {
	jobID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	if err := utils.GetValidator().Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": utils.FirstError(err)})
		return
	}

	m := models.Milestone{Title: req.Title, Percentage: req.Percentage}
	actor := utils.ActorFromContext(c)
	if err := h.milestones.AddMilestone(c.Request.Context(), actor, jobID, &m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	jobID, milestoneID, ok := milestoneIDs(c)
	if !ok {
		return
	}
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	if err := utils.GetValidator().Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": utils.FirstError(err)})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.milestones.UpdateMilestone(c.Request.Context(), actor, jobID, milestoneID, req.Title, req.Percentage); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milestone updated"})
}

func (h *MilestoneHandler) DeleteMilestone(c *gin.Context) {
	jobID, milestoneID, ok := milestoneIDs(c)
	if !ok {
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.milestones.DeleteMilestone(c.Request.Context(), actor, jobID, milestoneID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milestone deleted"})
}

func (h *MilestoneHandler) RequestApproval(c *gin.Context) {
	jobID, milestoneID, ok := milestoneIDs(c)
	if !ok {
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.milestones.RequestApproval(c.Request.Context(), actor, jobID, milestoneID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Approval requested"})
}

func (h *MilestoneHandler) ApproveMilestone(c *gin.Context) {
	jobID, milestoneID, ok := milestoneIDs(c)
	if !ok {
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.milestones.ApproveMilestone(c.Request.Context(), actor, jobID, milestoneID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milestone approved"})
}

type rejectRequest struct {
	Feedback string `json:"feedback"`
}

func (h *MilestoneHandler) RejectMilestone(c *gin.Context) {
	jobID, milestoneID, ok := milestoneIDs(c)
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.milestones.RejectMilestone(c.Request.Context(), actor, jobID, milestoneID, req.Feedback); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milestone rejected"})
}
