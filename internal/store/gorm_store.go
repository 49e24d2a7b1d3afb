package store

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/eventhub/internal/models"
)

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables backing GormStore.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{})
}

func (s *GormStore) CreateEvent(ctx context.Context, event *models.Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *GormStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (s *GormStore) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	query := s.db.WithContext(ctx).Model(&models.Event{})
	var folded []func(models.Event) bool
	if filter.Name != "" {
		if s.foldsInSQL(filter.Name) {
			query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(filter.Name))
		} else {
			folded = append(folded, func(e models.Event) bool { return containsFold(e.Name, filter.Name) })
		}
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		if s.foldsInSQL(filter.Location) {
			query = query.Where("LOWER(location) LIKE ? ESCAPE '\\'", containsPattern(filter.Location))
		} else {
			folded = append(folded, func(e models.Event) bool { return containsFold(e.Location, filter.Location) })
		}
	}
	if !filter.Day.IsZero() {
		query = query.Where("date >= ? AND date < ?", filter.Day, filter.Day.Add(24*time.Hour))
	}

	events := []models.Event{}
	if err := query.Order("date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	if len(folded) == 0 {
		return events, nil
	}

	matched := events[:0]
	for _, event := range events {
		keep := true
		for _, match := range folded {
			if !match(event) {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// foldsInSQL reports whether LOWER() can fold the term in the database.
// sqlite's LOWER only knows ASCII, so other terms are matched in Go.
func (s *GormStore) foldsInSQL(term string) bool {
	if s.db.Dialector.Name() != "sqlite" {
		return true
	}
	for i := 0; i < len(term); i++ {
		if term[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func (s *GormStore) ReplaceEvents(ctx context.Context, events []models.Event) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&models.Event{}).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		return tx.Create(&events).Error
	})
}

func (s *GormStore) CountRegistrations(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Registration{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (s *GormStore) FindRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	var registration models.Registration
	err := s.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).First(&registration).Error
	if err != nil {
		return nil, translate(err)
	}
	return &registration, nil
}

func (s *GormStore) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var registration models.Registration
	err := s.db.WithContext(ctx).Preload("Event").Preload("User").Where("id = ?", id).First(&registration).Error
	if err != nil {
		return nil, translate(err)
	}
	return &registration, nil
}

// CreateRegistration runs the duplicate check, the conditional seat
// increment and the insert in one transaction. The unique index on
// (event_id, user_id) backs the duplicate check.
func (s *GormStore) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&models.Registration{}).
			Where("event_id = ? AND user_id = ?", registration.EventID, registration.UserID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}

		result := tx.Model(&models.Event{}).
			Where("id = ? AND seats_taken < capacity", registration.EventID).
			UpdateColumn("seats_taken", gorm.Expr("seats_taken + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFull
		}

		if err := tx.Create(registration).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

func (s *GormStore) DeleteRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&models.Registration{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Model(&models.Event{}).
			Where("id = ? AND seats_taken > 0", eventID).
			UpdateColumn("seats_taken", gorm.Expr("seats_taken - 1")).Error
	})
}

func (s *GormStore) ListUserRegistrations(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	registrations := []models.Registration{}
	err := s.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&registrations).Error
	if err != nil {
		return nil, err
	}
	return registrations, nil
}

func (s *GormStore) ListAllRegistrations(ctx context.Context) ([]models.Registration, error) {
	registrations := []models.Registration{}
	err := s.db.WithContext(ctx).
		Preload("Event").
		Preload("User").
		Order("created_at DESC").
		Find(&registrations).Error
	if err != nil {
		return nil, err
	}
	return registrations, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the store sentinels. The *gorm.DB must be
// opened with TranslateError for duplicate keys to be recognised.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// containsPattern builds a case-insensitive LIKE pattern matching s as a
// literal substring.
func containsPattern(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(s))
	return "%" + escaped + "%"
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
