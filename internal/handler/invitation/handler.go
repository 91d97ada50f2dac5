package invitation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkup-app/linkup-api/internal/handler"
	"github.com/linkup-app/linkup-api/internal/middleware"
	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/service/invitation"
)

type Handler struct {
	service *invitation.Service
}

func NewHandler(service *invitation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/invitations")
	{
		group.POST("", h.RequestInvitation)
		group.POST("/bulk", h.RequestBulkInvitations)
		group.GET("/pending", h.ListPending)
		group.POST("/:id/respond", h.RespondToInvitation)
	}
	r.GET("/users/:user_id/busy", h.CheckBusyStatus)
}

type inviteRequest struct {
	ToUserID uuid.UUID `json:"to_user_id" binding:"required"`
	Activity string    `json:"activity" binding:"required,activity"`
}

func (h *Handler) RequestInvitation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	outcome, err := h.service.RequestInvitation(c.Request.Context(), userID, req.ToUserID, model.Activity(req.Activity))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	// A busy target is reported as a normal outcome, not an error.
	if !outcome.Created {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": outcome})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": outcome})
}

type bulkInviteRequest struct {
	ToUserIDs []uuid.UUID `json:"to_user_ids" binding:"required,min=1"`
	Activity  string      `json:"activity" binding:"required,activity"`
}

func (h *Handler) RequestBulkInvitations(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	var req bulkInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	result, err := h.service.RequestBulkInvitations(c.Request.Context(), userID, model.Activity(req.Activity), req.ToUserIDs)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}

type respondRequest struct {
	Response string `json:"response" binding:"required"`
}

func (h *Handler) RespondToInvitation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	invitationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid invitation ID"})
		return
	}

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	result, err := h.service.RespondToInvitation(c.Request.Context(), invitationID, userID, model.InvitationStatus(req.Response))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}

func (h *Handler) ListPending(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	invitations, err := h.service.ListPendingFor(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": invitations})
}

func (h *Handler) CheckBusyStatus(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid user ID"})
		return
	}

	verdict, err := h.service.CheckBusyStatus(c.Request.Context(), targetID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": verdict})
}
