package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/services"
)

// fromContext fetches a dependency injected by middleware.ServicesMiddleware
// and answers 500 when it is missing.
func fromContext[T any](c *gin.Context, key string) (T, bool) {
	value, exists := c.Get(key)
	service, ok := value.(T)
	if !exists || !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Service not configured.")
		return service, false
	}
	return service, true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	userID, ok := value.(uuid.UUID)
	if !exists || !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return uuid.Nil, false
	}
	return userID, true
}

func requestLogger(c *gin.Context) logrus.FieldLogger {
	value, _ := c.Get(middleware.LoggerKey)
	if logger, ok := value.(*logrus.Logger); ok && logger != nil {
		return logger.WithField("path", c.FullPath())
	}
	return logrus.StandardLogger()
}

// respondWithServiceError maps service errors onto statuses. Anything it does
// not recognise is logged and answered with fallback as a 500.
func respondWithServiceError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		helpers.RespondWithError(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, services.ErrEventNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found")
	case errors.Is(err, services.ErrRegistrationNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Registration not found")
	case errors.Is(err, services.ErrUserNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrDuplicateRegistration):
		helpers.RespondWithError(c, http.StatusBadRequest, "You are already registered for this event")
	case errors.Is(err, services.ErrCapacityExceeded):
		helpers.RespondWithError(c, http.StatusBadRequest, "Event is at full capacity")
	case errors.Is(err, services.ErrEmailTaken):
		helpers.RespondWithError(c, http.StatusBadRequest, "A user with this email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrInvalidTicket):
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid QR code format")
	case errors.Is(err, services.ErrTicketSignature):
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code signature")
	case errors.Is(err, services.ErrNotEventCreator):
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to verify this ticket")
	default:
		c.Error(err)
		requestLogger(c).WithError(err).Error(fallback)
		helpers.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
