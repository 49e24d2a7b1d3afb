package services

import "errors"

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("user is already registered for this event")
	ErrCapacityExceeded      = errors.New("event is at full capacity")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidTicket         = errors.New("invalid ticket payload")
	ErrTicketSignature       = errors.New("ticket signature mismatch")
	ErrNotEventCreator       = errors.New("only the event creator can verify tickets")
)

// ValidationError reports caller input that failed a business rule. Message
// is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
