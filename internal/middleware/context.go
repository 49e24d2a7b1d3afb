package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/farellandr/eventhub/internal/store"
)

// Keys under which middleware stores request-scoped values on the gin
// context.
const (
	UserIDKey       = "user_id"
	CredentialKey   = "credential"
	LoggerKey       = "logger"
	AuthKey         = "auth_service"
	RegistrationKey = "registration_service"
	TicketKey       = "ticket_service"
	UploaderKey     = "uploader"
)

type Services struct {
	Auth          *services.AuthService
	Registrations *services.RegistrationService
	Tickets       *services.TicketService
	Uploader      helpers.ImageUploader
	Logger        *logrus.Logger
}

func ServicesMiddleware(svc Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(AuthKey, svc.Auth)
		c.Set(RegistrationKey, svc.Registrations)
		c.Set(TicketKey, svc.Tickets)
		c.Set(UploaderKey, svc.Uploader)
		c.Set(LoggerKey, svc.Logger)
		c.Next()
	}
}

// DatabaseMiddleware answers 503 when the server started without a
// reachable database.
func DatabaseMiddleware(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s == nil {
			helpers.AbortWithError(c, http.StatusServiceUnavailable, "Database not connected. Please try again later.")
			return
		}
		c.Next()
	}
}
