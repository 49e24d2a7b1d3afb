package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/services"
)

type VerifyTicketRequest struct {
	QRData string `json:"qr_data" binding:"required"`
}

// GenerateTicketQR returns the caller's ticket for event :id as a PNG.
func GenerateTicketQR(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Registration not found")
		return
	}

	tickets, ok := fromContext[*services.TicketService](c, middleware.TicketKey)
	if !ok {
		return
	}

	qrImage, err := tickets.QRCode(c.Request.Context(), eventID, userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to generate QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

func VerifyTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req VerifyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	tickets, ok := fromContext[*services.TicketService](c, middleware.TicketKey)
	if !ok {
		return
	}

	summary, err := tickets.Verify(c.Request.Context(), userID, req.QRData)
	if err != nil {
		respondWithServiceError(c, err, "Failed to verify ticket")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ticket verified",
		"data":    summary,
	})
}
