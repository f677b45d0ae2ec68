package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

type TaskStorage struct {
	col *mongo.Collection
}

func NewTaskStorage(db *mongo.Database) *TaskStorage {
	return &TaskStorage{col: db.Collection("tasks")}
}

func (s *TaskStorage) FetchTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not fetch task: %w", err)
	}
	return &task, nil
}

func (s *TaskStorage) FilterTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := bson.M{}
	if filter.EventID != "" {
		query["eventId"] = filter.EventID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.VolunteerOnly {
		query["$or"] = bson.A{
			bson.M{"isVolunteerTask": true},
			bson.M{"volunteerHours": bson.M{"$gt": 0}},
		}
	}

	cur, err := s.col.Find(ctx, query, options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, fmt.Errorf("could not filter tasks: %w", err)
	}
	defer cur.Close(ctx)

	var tasks []model.Task
	for cur.Next(ctx) {
		var t model.Task
		if err := cur.Decode(&t); err != nil {
			return nil, fmt.Errorf("could not decode task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStorage) CreateTask(ctx context.Context, task *model.Task) error {
	if _, err := s.col.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}
	return nil
}

func (s *TaskStorage) UpdateTask(ctx context.Context, task *model.Task) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (s *TaskStorage) StampMessage(ctx context.Context, id string, at time.Time, by string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastMessageTime": at, "lastMessageBy": by}})
	if err != nil {
		return fmt.Errorf("could not stamp message on task: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (s *TaskStorage) RemoveTask(ctx context.Context, id string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("could not remove task: %w", err)
	}
	return nil
}
