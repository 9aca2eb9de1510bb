package api

import (
	"context"
	"errors"
	"net/http"

	"lagospaces/server/internal/auth"
	"lagospaces/server/internal/database"
	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/search"
	"lagospaces/server/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeError maps service errors onto HTTP responses. Unexpected errors are logged with
// action and answered with a generic message.
func (h *Handler) writeError(c *gin.Context, err error, action string) {
	var verrs forms.ValidationErrors
	var missing *wizard.IncompleteError

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please correct the highlighted fields", "fields": verrs})
	case errors.As(err, &missing):
		c.JSON(http.StatusConflict, gin.H{"error": missing.Message, "field": missing.Field})
	case errors.Is(err, search.ErrInvalidCriteria):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, wizard.ErrSessionNotFound),
		errors.Is(err, wizard.ErrSessionClosed),
		errors.Is(err, wizard.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(err)})
	case errors.Is(err, wizard.ErrBusy),
		errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, database.ErrBookingSettled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrUnsupportedFile):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.WithError(err).WithField("path", c.FullPath()).Info("Request cancelled")
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Request cancelled"})
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"path":    c.FullPath(),
			"user_id": auth.UserID(c),
		}).Error("Failed to " + action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, wizard.ErrSessionClosed):
		return "This session was closed"
	case errors.Is(err, wizard.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, wizard.ErrFileNotFound):
		return "File not uploaded"
	default:
		return "Not found"
	}
}
