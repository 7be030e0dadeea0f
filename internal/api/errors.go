package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerylCAtieno/icp-profiler/internal/chat"
	"github.com/BerylCAtieno/icp-profiler/internal/logging"
	"github.com/BerylCAtieno/icp-profiler/internal/profiler"
)

// AnalysisFailedMessage is what clients see for any analysis failure; the
// cause is logged, not returned.
const AnalysisFailedMessage = profiler.FailureMessage

// APIError is the body of every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return "[" + e.Code + "] " + e.Message
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func badRequest(code, message string) *APIError {
	return newAPIError(http.StatusBadRequest, code, message)
}

// toAPIError maps domain errors onto HTTP responses.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var analysisErr *profiler.AnalysisError
	switch {
	case errors.Is(err, profiler.ErrEmptyDescription):
		return badRequest("EMPTY_DESCRIPTION", "productDescription must not be empty")
	case errors.As(err, &analysisErr):
		return newAPIError(http.StatusBadGateway, "ANALYSIS_FAILED", AnalysisFailedMessage)
	case errors.Is(err, chat.ErrEmptyMessage):
		return badRequest("EMPTY_MESSAGE", "text must not be empty")
	case errors.Is(err, chat.ErrInvalidPersona):
		return badRequest("INVALID_PERSONA", "persona.role must not be empty")
	case errors.Is(err, chat.ErrNotFound):
		return newAPIError(http.StatusNotFound, "SESSION_NOT_FOUND", "chat session not found")
	case errors.Is(err, chat.ErrBusy):
		return newAPIError(http.StatusConflict, "REPLY_PENDING", "wait for the persona to reply before sending again")
	case errors.Is(err, chat.ErrSessionReset):
		return newAPIError(http.StatusConflict, "SESSION_RESET", "the chat was reset before the reply arrived")
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
	}
}

// ErrorHandler renders the first error a handler attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors[0].Err
		apiErr := toAPIError(err)

		log := logging.FromContext(c).WithError(err).WithField("error_code", apiErr.Code)
		if apiErr.Status >= http.StatusInternalServerError {
			log.Error("request failed")
		} else {
			log.Info("request rejected")
		}

		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
	}
}
