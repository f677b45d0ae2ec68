package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

type VolunteerStorage struct {
	col *mongo.Collection
	// general is the cross-event volunteer directory.
	general *mongo.Collection
}

func NewVolunteerStorage(db *mongo.Database) *VolunteerStorage {
	return &VolunteerStorage{
		col:     db.Collection("volunteers"),
		general: db.Collection("general_volunteers"),
	}
}

func (s *VolunteerStorage) FetchVolunteersByEvent(ctx context.Context, eventID string) ([]model.Volunteer, error) {
	query := bson.M{}
	if eventID != "" {
		query["eventId"] = eventID
	}
	cur, err := s.col.Find(ctx, query, options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, fmt.Errorf("could not fetch volunteers: %w", err)
	}
	defer cur.Close(ctx)

	var volunteers []model.Volunteer
	for cur.Next(ctx) {
		var v model.Volunteer
		if err := cur.Decode(&v); err != nil {
			return nil, fmt.Errorf("could not decode volunteer: %w", err)
		}
		volunteers = append(volunteers, v)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate volunteers: %w", err)
	}
	return volunteers, nil
}

func (s *VolunteerStorage) CreateVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	if _, err := s.col.InsertOne(ctx, volunteer); err != nil {
		return fmt.Errorf("could not create volunteer: %w", err)
	}
	return nil
}

func (s *VolunteerStorage) UpdateVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": volunteer.ID}, volunteer)
	if err != nil {
		return fmt.Errorf("could not update volunteer: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrVolunteerNotFound
	}
	return nil
}

func (s *VolunteerStorage) RemoveVolunteer(ctx context.Context, id string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("could not remove volunteer: %w", err)
	}
	return nil
}

// PhoneByEmail implements notify.VolunteerDirectory; an empty eventID
// searches across all events.
func (s *VolunteerStorage) PhoneByEmail(ctx context.Context, eventID, email string) (string, error) {
	return phoneByEmail(ctx, s.col, eventID, email)
}

// GeneralPhoneByEmail looks the email up in the cross-event directory.
func (s *VolunteerStorage) GeneralPhoneByEmail(ctx context.Context, email string) (string, error) {
	return phoneByEmail(ctx, s.general, "", email)
}

func phoneByEmail(ctx context.Context, col *mongo.Collection, eventID, email string) (string, error) {
	query := bson.M{
		"email": strings.ToLower(strings.TrimSpace(email)),
		"phone": bson.M{"$nin": bson.A{"", nil}},
	}
	if eventID != "" {
		query["eventId"] = eventID
	}

	var v model.Volunteer
	if err := col.FindOne(ctx, query).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", model.ErrVolunteerNotFound
		}
		return "", fmt.Errorf("could not look up volunteer phone: %w", err)
	}
	return v.Phone, nil
}
