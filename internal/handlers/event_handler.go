package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/services"
)

const eventImageUploadType = "events"

type CreateEventRequest struct {
	Name        string      `json:"name"`
	Organizer   string      `json:"organizer"`
	Location    string      `json:"location"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Capacity    json.Number `json:"capacity"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
}

func ListEvents(c *gin.Context) {
	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	filter := models.EventFilter{
		Name:     strings.TrimSpace(c.Query("name")),
		Category: models.Category(strings.TrimSpace(c.Query("category"))),
		Location: strings.TrimSpace(c.Query("location")),
	}
	if date := c.Query("date"); date != "" {
		day, err := helpers.ParseDay(date)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date filter.")
			return
		}
		filter.Day = day
	}

	events, err := registrations.ListEvents(c.Request.Context(), filter)
	if err != nil {
		respondWithServiceError(c, err, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(events),
		"data":    events,
	})
}

func GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found")
		return
	}

	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	credential := services.AnonymousCredential()
	if value, exists := c.Get(middleware.CredentialKey); exists {
		credential = value.(services.Credential)
	}

	event, err := registrations.GetEvent(c.Request.Context(), eventID, credential)
	if err != nil {
		respondWithServiceError(c, err, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    event,
	})
}

// CreateEvent accepts JSON or multipart/form-data. A multipart "image" file
// is uploaded and replaces any image URL field.
func CreateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	var req CreateEventRequest
	multipartForm := strings.HasPrefix(c.ContentType(), "multipart/form-data")
	if multipartForm {
		req = CreateEventRequest{
			Name:        c.PostForm("name"),
			Organizer:   c.PostForm("organizer"),
			Location:    c.PostForm("location"),
			Date:        c.PostForm("date"),
			Description: c.PostForm("description"),
			Capacity:    json.Number(strings.TrimSpace(c.PostForm("capacity"))),
			Category:    c.PostForm("category"),
			Image:       c.PostForm("image"),
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	if strings.TrimSpace(req.Date) == "" || req.Capacity == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Please provide all required fields")
		return
	}
	date, err := helpers.ParseEventDate(req.Date)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format.")
		return
	}
	capacity, err := helpers.ParseCapacity(req.Capacity)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Capacity must be a whole number of at least 0.")
		return
	}

	input := services.CreateEventInput{
		Name:        req.Name,
		Organizer:   req.Organizer,
		Location:    req.Location,
		Date:        date,
		Description: req.Description,
		Capacity:    capacity,
		Category:    models.Category(strings.TrimSpace(req.Category)),
		Image:       req.Image,
	}
	if err := input.Validate(); err != nil {
		respondWithServiceError(c, err, "Failed to create event.")
		return
	}

	var uploader helpers.ImageUploader
	if multipartForm {
		if imageFile, err := c.FormFile("image"); err == nil {
			if uploader, ok = fromContext[helpers.ImageUploader](c, middleware.UploaderKey); !ok {
				return
			}
			imageURL, err := uploader.Upload(c, imageFile, eventImageUploadType)
			if err != nil {
				helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
				return
			}
			input.Image = imageURL
		}
	}

	event, err := registrations.CreateEvent(c.Request.Context(), userID, input)
	if err != nil {
		if uploader != nil {
			if removeErr := uploader.Remove(c.Request.Context(), input.Image); removeErr != nil {
				requestLogger(c).WithError(removeErr).Warn("Failed to remove orphaned event image")
			}
		}
		respondWithServiceError(c, err, "Failed to create event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    event,
	})
}
