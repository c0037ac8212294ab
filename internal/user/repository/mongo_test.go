package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/daily-task-list/backend/internal/common/clock"
	"github.com/daily-task-list/backend/internal/common/constants"
	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/common/logger"
	"github.com/daily-task-list/backend/internal/common/mongodb"
	"github.com/daily-task-list/backend/internal/user/domain"
)

func TestInsertUserError(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	if err := insertUserError(duplicate); !errors.Is(err, ErrUsernameAlreadyExists) {
		t.Errorf("duplicate key: expected ErrUsernameAlreadyExists, got %v", err)
	}

	if err := insertUserError(mongo.ErrClientDisconnected); !commonerrors.IsUnavailable(err) {
		t.Errorf("disconnected: expected store unavailable, got %v", err)
	}

	other := errors.New("document too large")
	err := insertUserError(other)
	if !errors.Is(err, other) || errors.Is(err, ErrUsernameAlreadyExists) || commonerrors.IsUnavailable(err) {
		t.Errorf("other error: expected wrapped original, got %v", err)
	}
}

// Runs only when MONGO_URI points at a reachable server. Each run uses its
// own database and drops it afterwards.
func TestMongoRepository_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := logger.NewWithWriter(io.Discard, "test", "error")
	name := "user_repo_test_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	client, database, err := mongodb.Connect(ctx, log, uri, name)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect(context.Background())
	if err := mongodb.NewPinger(client).Ping(ctx); err != nil {
		t.Fatalf("mongo at %s not reachable: %v", uri, err)
	}
	defer database.Drop(context.Background())

	users := database.Collection(constants.UsersCollection)
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		t.Fatalf("create index: %v", err)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMongoRepository(database, clock.NewMockClock(now))

	created, err := repo.Create(ctx, domain.User{Username: "alice", PasswordHash: "hash-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := primitive.ObjectIDFromHex(string(created.ID)); err != nil {
		t.Errorf("expected hex object id, got %q", created.ID)
	}
	if !created.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, created.CreatedAt)
	}

	if _, err := repo.Create(ctx, domain.User{Username: "alice", PasswordHash: "hash-2"}); !errors.Is(err, ErrUsernameAlreadyExists) {
		t.Errorf("duplicate: expected ErrUsernameAlreadyExists, got %v", err)
	}

	found, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != created.ID || found.PasswordHash != "hash-1" || !found.CreatedAt.Equal(now) {
		t.Errorf("unexpected user %+v", found)
	}

	// Written by the Flask service: no created_at, werkzeug hash.
	if _, err := users.InsertOne(ctx, bson.M{"username": "bob", "password": "pbkdf2:sha256:1000$salt$00"}); err != nil {
		t.Fatalf("insert legacy: %v", err)
	}
	legacy, err := repo.FindByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("find legacy: %v", err)
	}
	if legacy.PasswordHash != "pbkdf2:sha256:1000$salt$00" || !legacy.CreatedAt.IsZero() {
		t.Errorf("unexpected legacy user %+v", legacy)
	}

	if _, err := repo.FindByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
