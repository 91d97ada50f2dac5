package friend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkup-app/linkup-api/internal/handler"
	"github.com/linkup-app/linkup-api/internal/middleware"
	"github.com/linkup-app/linkup-api/internal/service/friend"
)

type Handler struct {
	service *friend.Service
}

func NewHandler(service *friend.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/friends")
	{
		group.GET("", h.ListFriends)
		group.POST("/requests", h.CreateRequest)
		group.POST("/requests/:id/respond", h.RespondToRequest)
	}
}

type friendRequest struct {
	ToUserID uuid.UUID `json:"to_user_id" binding:"required"`
}

func (h *Handler) CreateRequest(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	request, err := h.service.CreateRequest(c.Request.Context(), userID, req.ToUserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": request})
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

func (h *Handler) RespondToRequest(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request ID"})
		return
	}

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	request, err := h.service.RespondToRequest(c.Request.Context(), requestID, userID, req.Accept)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": request})
}

func (h *Handler) ListFriends(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	friendIDs, err := h.service.ListFriendIDs(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": friendIDs})
}
