package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legendai-gateway/internal/usecase"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message, Details: details})
}

// writeUseCaseError maps a usecase error to its status, message and details.
// Unclassified upstream failures only expose their cause in debug mode.
func writeUseCaseError(c *gin.Context, err error, debug bool) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		writeError(c, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		if ucErr.Reason == usecase.ReasonMessageTooLong {
			writeError(c, http.StatusBadRequest, "Message too long. Please keep it under 2000 characters.", "")
			return
		}
		writeError(c, http.StatusBadRequest, "Message is required and cannot be empty", "")
	case usecase.ErrorUnavailable:
		writeError(c, http.StatusServiceUnavailable, "AI service not available. Please check configuration.", "Groq client initialization failed")
	case usecase.ErrorUpstreamAuth:
		writeError(c, http.StatusInternalServerError, "Groq API key issue. Please check your API key.", ucErr.Cause())
	case usecase.ErrorRateLimited:
		writeError(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", ucErr.Cause())
	case usecase.ErrorUpstreamModel:
		writeError(c, http.StatusInternalServerError, "Model not available. Please check your model access.", ucErr.Cause())
	case usecase.ErrorUpstream:
		details := "Internal server error"
		if debug {
			details = ucErr.Cause()
		}
		writeError(c, http.StatusInternalServerError, "An internal error occurred. Please try again later.", details)
	default:
		writeError(c, http.StatusInternalServerError, "Internal server error", "")
	}
}
