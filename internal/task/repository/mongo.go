package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/mongodb"
	"github.com/daily-task-list/backend/internal/task/domain"
)

type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	UserID    string             `bson:"user_id"`
	Priority  string             `bson:"priority"`
	DueDate   *string            `bson:"due_date"`
}

func (d taskDocument) toDomain() domain.Task {
	return domain.Task{
		ID:        domain.ID(d.ID.Hex()),
		Title:     d.Title,
		Completed: d.Completed,
		UserID:    d.UserID,
		Priority:  d.Priority,
		DueDate:   d.DueDate,
	}
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(constants.TasksCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	start := time.Now()
	defer mongodb.MeasureOperation("insert task", constants.TasksCollection, start)

	doc := taskDocument{
		Title:     task.Title,
		Completed: task.Completed,
		UserID:    task.UserID,
		Priority:  task.Priority,
		DueDate:   task.DueDate,
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return domain.Task{}, mongodb.MapError(err, "insert task", constants.TasksCollection)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.Task{}, errors.New("unexpected inserted id type")
	}
	task.ID = domain.ID(oid.Hex())
	return task, nil
}

func (r *MongoRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Task, error) {
	start := time.Now()
	defer mongodb.MeasureOperation("list tasks", constants.TasksCollection, start)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, mongodb.MapError(err, "list tasks", constants.TasksCollection)
	}
	defer cursor.Close(ctx)

	tasks := make([]domain.Task, 0)
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, mongodb.MapError(err, "decode task", constants.TasksCollection)
		}
		tasks = append(tasks, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, mongodb.MapError(err, "list tasks", constants.TasksCollection)
	}

	return tasks, nil
}

func (r *MongoRepository) SetCompleted(ctx context.Context, id domain.ID, completed bool) error {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return ErrInvalidTaskID
	}

	start := time.Now()
	defer mongodb.MeasureOperation("update task", constants.TasksCollection, start)

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"completed": completed}})
	if err != nil {
		return mongodb.MapError(err, "update task", constants.TasksCollection)
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id domain.ID) error {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return ErrInvalidTaskID
	}

	start := time.Now()
	defer mongodb.MeasureOperation("delete task", constants.TasksCollection, start)

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mongodb.MapError(err, "delete task", constants.TasksCollection)
	}
	if res.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}
