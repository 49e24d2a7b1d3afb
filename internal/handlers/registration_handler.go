package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/services"
)

func RegisterForEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found")
		return
	}

	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	registration, err := registrations.Register(c.Request.Context(), eventID, userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to register for event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    registration,
	})
}

// CancelRegistration takes the event id, not the registration id.
func CancelRegistration(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Registration not found")
		return
	}

	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	if err := registrations.Cancel(c.Request.Context(), eventID, userID); err != nil {
		respondWithServiceError(c, err, "Failed to cancel registration.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Registration cancelled",
	})
}

func MyRegistrations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	mine, err := registrations.MyRegistrations(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Error retrieving registrations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(mine),
		"data":    mine,
	})
}

func AllRegistrations(c *gin.Context) {
	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	all, err := registrations.AllRegistrations(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err, "Error retrieving registrations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(all),
		"data":    all,
	})
}
