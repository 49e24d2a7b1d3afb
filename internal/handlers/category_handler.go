package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/services"
)

func ListCategories(c *gin.Context) {
	registrations, ok := fromContext[*services.RegistrationService](c, middleware.RegistrationKey)
	if !ok {
		return
	}

	categories := registrations.Categories()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(categories),
		"data":    categories,
	})
}
