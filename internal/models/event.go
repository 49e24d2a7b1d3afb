package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultEventImage = "https://images.unsplash.com/photo-1492684223066-81342ee5ff30?auto=format&fit=crop&q=80&w=1600"

type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"_id"`
	Name        string     `gorm:"not null" json:"name"`
	Organizer   string     `gorm:"not null" json:"organizer"`
	Location    string     `gorm:"not null" json:"location"`
	Date        time.Time  `gorm:"not null;index" json:"date"`
	Description string     `gorm:"not null" json:"description"`
	Capacity    int        `gorm:"not null" json:"capacity"`
	SeatsTaken  int        `gorm:"not null;default:0" json:"-"`
	Category    Category   `gorm:"not null;index" json:"category"`
	Image       string     `gorm:"not null" json:"image"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// EventFilter narrows an event listing. Empty fields do not filter.
type EventFilter struct {
	Name     string
	Category Category
	Location string
	// Day, when non-zero, keeps events dated within [Day, Day+24h).
	Day time.Time
}

// EventDetails is an event with its availability computed at read time.
type EventDetails struct {
	Event
	AvailableSeats int   `json:"availableSeats"`
	IsFull         bool  `json:"isFull"`
	IsRegistered   *bool `json:"isRegistered,omitempty"`
}

func NewEventDetails(event Event, registrationCount int64) EventDetails {
	return EventDetails{
		Event:          event,
		AvailableSeats: event.Capacity - int(registrationCount),
		IsFull:         registrationCount >= int64(event.Capacity),
	}
}
