package presence

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkup-app/linkup-api/internal/handler"
	"github.com/linkup-app/linkup-api/internal/middleware"
	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/service/presence"
)

type Handler struct {
	service *presence.Service
}

func NewHandler(service *presence.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/presence")
	{
		group.PUT("", h.SetAvailability)
		group.DELETE("", h.StopAvailability)
		group.GET("/:user_id", h.GetPresence)
	}
}

type setAvailabilityRequest struct {
	Activity        string `json:"activity" binding:"required,activity"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	ShareLocation   bool   `json:"share_location"`
}

func (h *Handler) SetAvailability(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	record, err := h.service.SetAvailability(c.Request.Context(), userID, model.Activity(req.Activity), req.DurationMinutes, req.ShareLocation)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": record})
}

func (h *Handler) StopAvailability(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	if err := h.service.StopAvailability(c.Request.Context(), userID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetPresence(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid user ID"})
		return
	}

	record, err := h.service.GetPresence(c.Request.Context(), targetID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": record})
}
