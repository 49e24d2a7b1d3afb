package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/farellandr/eventhub/internal/models"
)

const (
	eventsCollection        = "events"
	registrationsCollection = "registrations"
	usersCollection         = "users"
)

type eventDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Organizer   string    `bson:"organizer"`
	Location    string    `bson:"location"`
	Date        time.Time `bson:"date"`
	Description string    `bson:"description"`
	Capacity    int       `bson:"capacity"`
	SeatsTaken  int       `bson:"seatsTaken"`
	Category    string    `bson:"category"`
	Image       string    `bson:"image"`
	User        string    `bson:"user,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type registrationDocument struct {
	ID        string    `bson:"_id"`
	Event     string    `bson:"event"`
	User      string    `bson:"user"`
	CreatedAt time.Time `bson:"createdAt"`
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps each entity in its own collection with string uuids as
// document ids. Seat claims use a conditional $inc on the event document.
type MongoStore struct {
	client        *mongo.Client
	events        *mongo.Collection
	registrations *mongo.Collection
	users         *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*MongoStore, error) {
	db := client.Database(database)
	s := &MongoStore{
		client:        client,
		events:        db.Collection(eventsCollection),
		registrations: db.Collection(registrationsCollection),
		users:         db.Collection(usersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.registrations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	})
	return err
}

func (s *MongoStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	_, err := s.events.InsertOne(ctx, eventToDocument(event))
	return err
}

func (s *MongoStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var doc eventDocument
	if err := s.events.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	return doc.toModel()
}

func (s *MongoStore) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = containsRegex(filter.Name)
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.Location != "" {
		query["location"] = containsRegex(filter.Location)
	}
	if !filter.Day.IsZero() {
		query["date"] = bson.M{"$gte": filter.Day, "$lt": filter.Day.Add(24 * time.Hour)}
	}

	cursor, err := s.events.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(docs))
	for _, doc := range docs {
		event, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, nil
}

// ReplaceEvents is not transactional: standalone deployments have no
// multi-document transactions. It is only used by the seeder.
func (s *MongoStore) ReplaceEvents(ctx context.Context, events []models.Event) error {
	if _, err := s.registrations.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if _, err := s.events.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(events))
	for i := range events {
		if events[i].ID == uuid.Nil {
			events[i].ID = uuid.New()
		}
		events[i].CreatedAt = now
		events[i].UpdatedAt = now
		docs = append(docs, eventToDocument(&events[i]))
	}
	_, err := s.events.InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) CountRegistrations(ctx context.Context, eventID uuid.UUID) (int64, error) {
	return s.registrations.CountDocuments(ctx, bson.M{"event": eventID.String()})
}

func (s *MongoStore) FindRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	var doc registrationDocument
	err := s.registrations.FindOne(ctx, bson.M{"event": eventID.String(), "user": userID.String()}).Decode(&doc)
	if err != nil {
		return nil, translateMongo(err)
	}
	return doc.toModel()
}

func (s *MongoStore) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var doc registrationDocument
	if err := s.registrations.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	registration, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, []*models.Registration{registration}, true); err != nil {
		return nil, err
	}
	return registration, nil
}

// CreateRegistration claims a seat with a conditional $inc and then inserts
// the registration. A failed insert gives the seat back.
func (s *MongoStore) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	existing, err := s.registrations.CountDocuments(ctx, bson.M{
		"event": registration.EventID.String(),
		"user":  registration.UserID.String(),
	})
	if err != nil {
		return err
	}
	if existing > 0 {
		return ErrDuplicate
	}

	claimed, err := s.events.UpdateOne(ctx,
		bson.M{
			"_id":   registration.EventID.String(),
			"$expr": bson.M{"$lt": bson.A{"$seatsTaken", "$capacity"}},
		},
		bson.M{"$inc": bson.M{"seatsTaken": 1}},
	)
	if err != nil {
		return err
	}
	if claimed.MatchedCount == 0 {
		return ErrFull
	}

	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = time.Now().UTC()
	}
	if _, err := s.registrations.InsertOne(ctx, registrationToDocument(registration)); err != nil {
		if releaseErr := s.releaseSeat(ctx, registration.EventID); releaseErr != nil {
			return errors.Join(translateMongo(err), releaseErr)
		}
		return translateMongo(err)
	}
	return nil
}

func (s *MongoStore) DeleteRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	result, err := s.registrations.DeleteOne(ctx, bson.M{"event": eventID.String(), "user": userID.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return s.releaseSeat(ctx, eventID)
}

func (s *MongoStore) releaseSeat(ctx context.Context, eventID uuid.UUID) error {
	_, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID.String(), "seatsTaken": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"seatsTaken": -1}},
	)
	return err
}

func (s *MongoStore) ListUserRegistrations(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	return s.listRegistrations(ctx, bson.M{"user": userID.String()}, false)
}

func (s *MongoStore) ListAllRegistrations(ctx context.Context) ([]models.Registration, error) {
	return s.listRegistrations(ctx, bson.M{}, true)
}

func (s *MongoStore) listRegistrations(ctx context.Context, filter bson.M, withUsers bool) ([]models.Registration, error) {
	cursor, err := s.registrations.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []registrationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	registrations := make([]models.Registration, len(docs))
	refs := make([]*models.Registration, len(docs))
	for i, doc := range docs {
		registration, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		registrations[i] = *registration
		refs[i] = &registrations[i]
	}
	if err := s.populate(ctx, refs, withUsers); err != nil {
		return nil, err
	}
	return registrations, nil
}

// populate attaches events (and optionally users) to registrations with one
// $in query per collection. Missing references stay nil.
func (s *MongoStore) populate(ctx context.Context, registrations []*models.Registration, withUsers bool) error {
	if len(registrations) == 0 {
		return nil
	}

	eventIDs := make([]string, 0, len(registrations))
	userIDs := make([]string, 0, len(registrations))
	for _, r := range registrations {
		eventIDs = append(eventIDs, r.EventID.String())
		userIDs = append(userIDs, r.UserID.String())
	}

	cursor, err := s.events.Find(ctx, bson.M{"_id": bson.M{"$in": eventIDs}})
	if err != nil {
		return err
	}
	var eventDocs []eventDocument
	if err := cursor.All(ctx, &eventDocs); err != nil {
		return err
	}
	events := make(map[uuid.UUID]*models.Event, len(eventDocs))
	for _, doc := range eventDocs {
		event, err := doc.toModel()
		if err != nil {
			return err
		}
		events[event.ID] = event
	}

	users := map[uuid.UUID]*models.User{}
	if withUsers {
		cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
		if err != nil {
			return err
		}
		var userDocs []userDocument
		if err := cursor.All(ctx, &userDocs); err != nil {
			return err
		}
		for _, doc := range userDocs {
			user, err := doc.toModel()
			if err != nil {
				return err
			}
			users[user.ID] = user
		}
	}

	for _, r := range registrations {
		r.Event = events[r.EventID]
		if withUsers {
			r.User = users[r.UserID]
		}
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := s.users.InsertOne(ctx, userDocument{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	return translateMongo(err)
}

func (s *MongoStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	return doc.toModel()
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		user, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func eventToDocument(event *models.Event) eventDocument {
	doc := eventDocument{
		ID:          event.ID.String(),
		Name:        event.Name,
		Organizer:   event.Organizer,
		Location:    event.Location,
		Date:        event.Date,
		Description: event.Description,
		Capacity:    event.Capacity,
		SeatsTaken:  event.SeatsTaken,
		Category:    string(event.Category),
		Image:       event.Image,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	if event.UserID != nil {
		doc.User = event.UserID.String()
	}
	return doc
}

func (doc eventDocument) toModel() (*models.Event, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", doc.ID, err)
	}
	event := &models.Event{
		ID:          id,
		Name:        doc.Name,
		Organizer:   doc.Organizer,
		Location:    doc.Location,
		Date:        doc.Date.UTC(),
		Description: doc.Description,
		Capacity:    doc.Capacity,
		SeatsTaken:  doc.SeatsTaken,
		Category:    models.Category(doc.Category),
		Image:       doc.Image,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.User != "" {
		userID, err := uuid.Parse(doc.User)
		if err != nil {
			return nil, fmt.Errorf("event %q user: %w", doc.ID, err)
		}
		event.UserID = &userID
	}
	return event, nil
}

func registrationToDocument(registration *models.Registration) registrationDocument {
	return registrationDocument{
		ID:        registration.ID.String(),
		Event:     registration.EventID.String(),
		User:      registration.UserID.String(),
		CreatedAt: registration.CreatedAt,
	}
}

func (doc registrationDocument) toModel() (*models.Registration, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("registration %q: %w", doc.ID, err)
	}
	eventID, err := uuid.Parse(doc.Event)
	if err != nil {
		return nil, fmt.Errorf("registration %q event: %w", doc.ID, err)
	}
	userID, err := uuid.Parse(doc.User)
	if err != nil {
		return nil, fmt.Errorf("registration %q user: %w", doc.ID, err)
	}
	return &models.Registration{
		ID:        id,
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (doc userDocument) toModel() (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", doc.ID, err)
	}
	return &models.User{
		ID:        id,
		Name:      doc.Name,
		Email:     doc.Email,
		Password:  doc.Password,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
