package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/services"
)

// JWTAuthMiddleware rejects requests without a valid bearer token and
// stores the token's user id under UserIDKey.
func JWTAuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := auth.Authenticate(c.GetHeader("Authorization"))
		switch credential.State {
		case services.CredentialAbsent:
			helpers.AbortWithError(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		case services.CredentialInvalid:
			helpers.AbortWithError(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		c.Set(CredentialKey, credential)
		c.Set(UserIDKey, credential.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware never rejects. It stores the caller's credential,
// whatever its state, under CredentialKey.
func OptionalAuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := auth.Authenticate(c.GetHeader("Authorization"))
		c.Set(CredentialKey, credential)
		if credential.Valid() {
			c.Set(UserIDKey, credential.UserID)
		}
		c.Next()
	}
}
