// Package store persists events, registrations and users. Two backends
// implement Store: a gorm one (postgres in production, sqlite for local runs
// and tests) and a MongoDB one.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/farellandr/eventhub/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (registration pair, user
	// email) already exists.
	ErrDuplicate = errors.New("record already exists")
	// ErrFull is returned by CreateRegistration when the event has no seat
	// left at the moment of the conditional increment.
	ErrFull = errors.New("event is at full capacity")
)

type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	// ReplaceEvents deletes every event and registration and inserts events.
	ReplaceEvents(ctx context.Context, events []models.Event) error
}

type RegistrationStore interface {
	CountRegistrations(ctx context.Context, eventID uuid.UUID) (int64, error)
	FindRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	// CreateRegistration claims a seat and inserts the registration as one
	// atomic unit. It returns ErrDuplicate or ErrFull without side effects.
	CreateRegistration(ctx context.Context, registration *models.Registration) error
	// DeleteRegistration removes the pair's registration and releases its
	// seat. It returns ErrNotFound when there is nothing to delete.
	DeleteRegistration(ctx context.Context, eventID, userID uuid.UUID) error
	ListUserRegistrations(ctx context.Context, userID uuid.UUID) ([]models.Registration, error)
	ListAllRegistrations(ctx context.Context) ([]models.Registration, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type Store interface {
	EventStore
	RegistrationStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
