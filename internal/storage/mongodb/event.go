package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

type EventStorage struct {
	col *mongo.Collection
}

func NewEventStorage(db *mongo.Database) *EventStorage {
	return &EventStorage{col: db.Collection("events")}
}

func (s *EventStorage) FetchEventByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("could not fetch event: %w", err)
	}
	return &event, nil
}

func (s *EventStorage) CreateEvent(ctx context.Context, event *model.Event) error {
	if _, err := s.col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("could not create event: %w", err)
	}
	return nil
}

func (s *EventStorage) UpdateEvent(ctx context.Context, event *model.Event) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return fmt.Errorf("could not update event: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

func (s *EventStorage) RemoveEvent(ctx context.Context, id string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("could not remove event: %w", err)
	}
	return nil
}
