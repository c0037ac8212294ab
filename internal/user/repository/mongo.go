package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/daily-task-list/backend/internal/common/clock"
	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/mongodb"
	"github.com/daily-task-list/backend/internal/user/domain"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"created_at,omitempty"`
}

type MongoRepository struct {
	collection *mongo.Collection
	clock      clock.Clock
}

func NewMongoRepository(db *mongo.Database, clk clock.Clock) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(constants.UsersCollection),
		clock:      clk,
	}
}

func (r *MongoRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	start := time.Now()
	defer mongodb.MeasureOperation("insert user", constants.UsersCollection, start)

	doc := userDocument{
		Username:  user.Username,
		Password:  user.PasswordHash,
		CreatedAt: r.clock.Now().UTC(),
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return domain.User{}, insertUserError(err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.User{}, errors.New("unexpected inserted id type")
	}

	user.ID = domain.ID(oid.Hex())
	user.CreatedAt = doc.CreatedAt
	return user, nil
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	defer mongodb.MeasureOperation("find user by username", constants.UsersCollection, start)

	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, mongodb.MapError(err, "find user by username", constants.UsersCollection)
	}

	return domain.User{
		ID:           domain.ID(doc.ID.Hex()),
		Username:     doc.Username,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// insertUserError maps a duplicate key on a unique username index, when one
// exists, to ErrUsernameAlreadyExists.
func insertUserError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrUsernameAlreadyExists
	}
	return mongodb.MapError(err, "insert user", constants.UsersCollection)
}
