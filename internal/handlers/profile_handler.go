package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/services"
)

func GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	auth, ok := fromContext[*services.AuthService](c, middleware.AuthKey)
	if !ok {
		return
	}

	user, err := auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Error retrieving user.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    newUserResponse(user),
	})
}
