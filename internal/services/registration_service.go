package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/store"
)

// RegistrationService owns event listing, creation and seat bookkeeping.
type RegistrationService struct {
	store  store.Store
	logger logrus.FieldLogger
}

func NewRegistrationService(s store.Store, logger logrus.FieldLogger) *RegistrationService {
	return &RegistrationService{store: s, logger: logger}
}

func (s *RegistrationService) Categories() []models.Category {
	return models.Categories
}

// ListEvents returns the matching events, soonest first, each with its
// availability.
func (s *RegistrationService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventDetails, error) {
	events, err := s.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}

	details := make([]models.EventDetails, 0, len(events))
	for _, event := range events {
		count, err := s.store.CountRegistrations(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, models.NewEventDetails(event, count))
	}
	return details, nil
}

// GetEvent returns one event with its availability. IsRegistered is true
// only for a valid credential whose user holds a registration; an invalid
// credential is treated as anonymous.
func (s *RegistrationService) GetEvent(ctx context.Context, id uuid.UUID, credential Credential) (*models.EventDetails, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountRegistrations(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	details := models.NewEventDetails(*event, count)

	registered := false
	switch credential.State {
	case CredentialValid:
		_, err := s.store.FindRegistration(ctx, event.ID, credential.UserID)
		switch {
		case err == nil:
			registered = true
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	case CredentialInvalid:
		s.logger.WithError(credential.Err).WithField("event_id", id).Debug("Ignoring invalid credential on event lookup")
	}
	details.IsRegistered = &registered

	return &details, nil
}

type CreateEventInput struct {
	Name        string
	Organizer   string
	Location    string
	Date        time.Time
	Description string
	Capacity    int
	Category    models.Category
	Image       string
}

func (in *CreateEventInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Organizer = strings.TrimSpace(in.Organizer)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)

	if in.Name == "" || in.Organizer == "" || in.Location == "" || in.Description == "" || in.Category == "" || in.Date.IsZero() {
		return invalid("Please provide all required fields")
	}
	if in.Capacity < 0 {
		return invalid("Capacity must not be negative")
	}
	if !in.Category.Valid() {
		return invalid("Invalid category")
	}
	return nil
}

func (s *RegistrationService) CreateEvent(ctx context.Context, userID uuid.UUID, in CreateEventInput) (*models.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	image := in.Image
	if image == "" {
		image = models.DefaultEventImage
	}

	creator := userID
	event := &models.Event{
		ID:          uuid.New(),
		Name:        in.Name,
		Organizer:   in.Organizer,
		Location:    in.Location,
		Date:        in.Date.UTC(),
		Description: in.Description,
		Capacity:    in.Capacity,
		Category:    in.Category,
		Image:       image,
		UserID:      &creator,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"user_id":  userID,
		"capacity": event.Capacity,
	}).Info("Event created")
	return event, nil
}

// Register claims one seat of the event for the user.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	registration := &models.Registration{
		ID:      uuid.New(),
		EventID: event.ID,
		UserID:  userID,
	}
	if err := s.store.CreateRegistration(ctx, registration); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, ErrDuplicateRegistration
		case errors.Is(err, store.ErrFull):
			return nil, ErrCapacityExceeded
		default:
			return nil, err
		}
	}
	registration.Event = event

	s.logger.WithFields(logrus.Fields{
		"event_id":        event.ID,
		"user_id":         userID,
		"registration_id": registration.ID,
	}).Info("Registration created")
	return registration, nil
}

// Cancel deletes the user's registration for the event. The event itself is
// not looked up: a registration can be cancelled after its event is gone.
func (s *RegistrationService) Cancel(ctx context.Context, eventID, userID uuid.UUID) error {
	if err := s.store.DeleteRegistration(ctx, eventID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"user_id":  userID,
	}).Info("Registration cancelled")
	return nil
}

func (s *RegistrationService) MyRegistrations(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	return s.store.ListUserRegistrations(ctx, userID)
}

func (s *RegistrationService) AllRegistrations(ctx context.Context) ([]models.Registration, error) {
	return s.store.ListAllRegistrations(ctx)
}

// SeedEvents replaces the whole catalogue, dropping existing registrations.
func (s *RegistrationService) SeedEvents(ctx context.Context, events []models.Event) error {
	for i := range events {
		if events[i].Image == "" {
			events[i].Image = models.DefaultEventImage
		}
		events[i].Date = events[i].Date.UTC()
	}
	if err := s.store.ReplaceEvents(ctx, events); err != nil {
		return err
	}
	s.logger.WithField("count", len(events)).Info("Events seeded")
	return nil
}

func (s *RegistrationService) getEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	return event, err
}
