package handler

import (
	"net/http"

	"freelance-app/internal/services"
	"freelance-app/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	actor := utils.ActorFromContext(c)
	includeArchived := c.Query("archived") == "true"
	notifications, err := h.notifications.List(c.Request.Context(), actor.ID, includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.notifications.MarkRead(c.Request.Context(), id, actor.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (r *idsRequest) objectIDs() ([]primitive.ObjectID, bool) {
	ids := make([]primitive.ObjectID, 0, len(r.IDs))
	for _, raw := range r.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func (h *NotificationHandler) MarkReadMultiple(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	ids, ok := req.objectIDs()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	updated, err := h.notifications.MarkReadMany(c.Request.Context(), ids, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor := utils.ActorFromContext(c)
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) Archive(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.notifications.Archive(c.Request.Context(), id, actor.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification archived"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	if err := h.notifications.Delete(c.Request.Context(), id, actor.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func (h *NotificationHandler) DeleteMultiple(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	ids, ok := req.objectIDs()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}
	actor := utils.ActorFromContext(c)
	deleted, err := h.notifications.DeleteMany(c.Request.Context(), ids, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
