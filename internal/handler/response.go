package handler

import (
	"net/http"

	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
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

// StatusFromError maps an application error code to the HTTP status the
// caller sees.
func StatusFromError(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrConflict:
		return http.StatusConflict
	case apperrors.ErrUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
