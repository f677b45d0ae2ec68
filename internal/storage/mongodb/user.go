package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

type UserStorage struct {
	col *mongo.Collection
}

func NewUserStorage(db *mongo.Database) *UserStorage {
	return &UserStorage{col: db.Collection("users")}
}

func (s *UserStorage) FetchUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("could not fetch user: %w", err)
	}
	return &user, nil
}

func (s *UserStorage) FetchUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.col.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("could not fetch user by email: %w", err)
	}
	return &user, nil
}

func (s *UserStorage) CreateUser(ctx context.Context, user *model.User) error {
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (s *UserStorage) UpdateUser(ctx context.Context, user *model.User) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// PhoneByUserID implements notify.UserDirectory.
func (s *UserStorage) PhoneByUserID(ctx context.Context, userID string) (string, error) {
	user, err := s.FetchUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Phone, nil
}

// PhoneByEmail implements notify.UserDirectory.
func (s *UserStorage) PhoneByEmail(ctx context.Context, email string) (string, error) {
	user, err := s.FetchUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Phone, nil
}
