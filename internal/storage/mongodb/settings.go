package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

const settingsDocID = "app"

type SettingsStorage struct {
	col *mongo.Collection
}

func NewSettingsStorage(db *mongo.Database) *SettingsStorage {
	return &SettingsStorage{col: db.Collection("settings")}
}

func (s *SettingsStorage) FetchSettings(ctx context.Context) (*model.AppSettings, error) {
	var settings model.AppSettings
	err := s.col.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("could not fetch settings: %w", err)
	}
	return &settings, nil
}
