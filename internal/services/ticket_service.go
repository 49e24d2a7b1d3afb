package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/store"
)

const qrCodeSize = 256

// TicketService turns registrations into signed QR tickets and checks them
// at the door.
type TicketService struct {
	store  store.Store
	secret string
}

func NewTicketService(s store.Store, secret string) *TicketService {
	return &TicketService{store: s, secret: secret}
}

type TicketSummary struct {
	RegistrationID uuid.UUID `json:"registrationId"`
	EventID        uuid.UUID `json:"eventId"`
	EventName      string    `json:"eventName"`
	AttendeeName   string    `json:"attendeeName"`
	AttendeeEmail  string    `json:"attendeeEmail"`
}

// Payload renders the signed text encoded in a ticket's QR code.
func (s *TicketService) Payload(registration *models.Registration) string {
	signature := s.sign(registration.ID, registration.EventID, registration.UserID)
	return fmt.Sprintf("registration:%s;event:%s;user:%s;signature:%s",
		registration.ID, registration.EventID, registration.UserID, signature)
}

// QRCode returns a PNG ticket for the user's registration to the event.
func (s *TicketService) QRCode(ctx context.Context, eventID, userID uuid.UUID) ([]byte, error) {
	registration, err := s.store.FindRegistration(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	png, err := qrcode.Encode(s.Payload(registration), qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// Verify checks a scanned ticket. Only the creator of the ticket's event may
// verify it.
func (s *TicketService) Verify(ctx context.Context, verifierID uuid.UUID, payload string) (*TicketSummary, error) {
	ticket, err := parseTicketPayload(payload)
	if err != nil {
		return nil, err
	}
	if !helpers.VerifySignature(s.secret, ticket.signature,
		ticket.registrationID.String(), ticket.eventID.String(), ticket.userID.String()) {
		return nil, ErrTicketSignature
	}

	registration, err := s.store.GetRegistration(ctx, ticket.registrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if registration.Event == nil {
		return nil, ErrEventNotFound
	}
	if registration.Event.UserID == nil || *registration.Event.UserID != verifierID {
		return nil, ErrNotEventCreator
	}

	summary := &TicketSummary{
		RegistrationID: registration.ID,
		EventID:        registration.EventID,
		EventName:      registration.Event.Name,
	}
	if registration.User != nil {
		summary.AttendeeName = registration.User.Name
		summary.AttendeeEmail = registration.User.Email
	}
	return summary, nil
}

func (s *TicketService) sign(registrationID, eventID, userID uuid.UUID) string {
	return helpers.Sign(s.secret, registrationID.String(), eventID.String(), userID.String())
}

type ticketPayload struct {
	registrationID uuid.UUID
	eventID        uuid.UUID
	userID         uuid.UUID
	signature      string
}

func parseTicketPayload(payload string) (*ticketPayload, error) {
	keys := []string{"registration", "event", "user", "signature"}
	parts := strings.Split(strings.TrimSpace(payload), ";")
	if len(parts) != len(keys) {
		return nil, ErrInvalidTicket
	}

	values := make([]string, len(keys))
	for i, key := range keys {
		value, ok := strings.CutPrefix(parts[i], key+":")
		if !ok || value == "" {
			return nil, ErrInvalidTicket
		}
		values[i] = value
	}

	var ticket ticketPayload
	var err error
	if ticket.registrationID, err = uuid.Parse(values[0]); err != nil {
		return nil, ErrInvalidTicket
	}
	if ticket.eventID, err = uuid.Parse(values[1]); err != nil {
		return nil, ErrInvalidTicket
	}
	if ticket.userID, err = uuid.Parse(values[2]); err != nil {
		return nil, ErrInvalidTicket
	}
	ticket.signature = values[3]
	return &ticket, nil
}
