package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/store"
	"github.com/farellandr/eventhub/internal/store/storetest"
)

const testSecret = "test-secret"

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServices(t *testing.T) (store.Store, *AuthService, *RegistrationService) {
	t.Helper()
	s := storetest.NewSQLiteStore(t)
	auth := NewAuthService(s, AuthConfig{Secret: testSecret, TokenTTL: time.Hour, HashCost: bcrypt.MinCost})
	return s, auth, NewRegistrationService(s, newTestLogger())
}

func registerUser(t *testing.T, auth *AuthService, name, email string) *models.User {
	t.Helper()
	user, _, err := auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Failed to register %s: %v", email, err)
	}
	return user
}

func createEvent(t *testing.T, svc *RegistrationService, creator uuid.UUID, capacity int) *models.Event {
	t.Helper()
	event, err := svc.CreateEvent(context.Background(), creator, CreateEventInput{
		Name:        "Sufi Music Night",
		Organizer:   "Soulful Tunes",
		Location:    "Lucknow",
		Date:        time.Date(2026, 11, 20, 19, 0, 0, 0, time.UTC),
		Description: "An evening of qawwali.",
		Capacity:    capacity,
		Category:    models.CategoryMusic,
	})
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return event
}
