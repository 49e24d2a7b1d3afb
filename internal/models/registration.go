package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration is one user's claim on one seat of one event. The pair
// (EventID, UserID) is unique.
type Registration struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_event_user" json:"eventId"`
	Event     *Event    `gorm:"foreignKey:EventID" json:"event"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_event_user;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (registration *Registration) BeforeCreate(tx *gorm.DB) (err error) {
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	return
}
