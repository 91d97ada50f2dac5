package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps a service error to its HTTP status and writes the
// standard envelope.
func RespondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), NewErrorResponse(err.Error()))
}

func statusFor(err error) int {
	switch apperrors.Code(err) {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrConflict, apperrors.ErrDuplicatePending:
		return http.StatusConflict
	case apperrors.ErrExpired:
		return http.StatusGone
	case apperrors.ErrBadRequest, apperrors.ErrSelfInvitation,
		apperrors.ErrInvalidActivity, apperrors.ErrInvalidDuration,
		apperrors.ErrInvalidResponse, apperrors.ErrUnresolvedRecipient:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
