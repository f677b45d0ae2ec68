package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const rateTokenID = "whatsapp"

// RateTokenStorage keeps the single shared last-send timestamp that
// spaces outbound messages across every process. Claims are optimistic:
// the write only lands when the stored value still equals what the
// claimant read.
type RateTokenStorage struct {
	col *mongo.Collection
}

func NewRateTokenStorage(db *mongo.Database) *RateTokenStorage {
	return &RateTokenStorage{col: db.Collection("rate_tokens")}
}

func (s *RateTokenStorage) LastSendAt(ctx context.Context) (time.Time, error) {
	var doc struct {
		LastSendAt time.Time `bson:"lastSendAt"`
	}
	err := s.col.FindOne(ctx, bson.M{"_id": rateTokenID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("could not read rate token: %w", err)
	}
	return doc.LastSendAt, nil
}

func (s *RateTokenStorage) ClaimSendAt(ctx context.Context, prev, next time.Time) (bool, error) {
	// BSON datetimes carry millisecond precision; store what a later
	// read will compare against.
	next = next.Truncate(time.Millisecond)

	if prev.IsZero() {
		_, err := s.col.UpdateOne(ctx,
			bson.M{"_id": rateTokenID, "lastSendAt": bson.M{"$exists": false}},
			bson.M{"$set": bson.M{"lastSendAt": next}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Another claimant created the document first.
				return false, nil
			}
			return false, fmt.Errorf("could not initialize rate token: %w", err)
		}
		return true, nil
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": rateTokenID, "lastSendAt": prev},
		bson.M{"$set": bson.M{"lastSendAt": next}},
	)
	if err != nil {
		return false, fmt.Errorf("could not claim rate token: %w", err)
	}
	return res.MatchedCount == 1, nil
}
