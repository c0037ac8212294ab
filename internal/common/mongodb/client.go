package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/logger"
)

// Connect builds a client for uri. The driver connects lazily, so an
// unreachable server only shows up as a failed Ping or a failed operation;
// Connect itself fails only on a malformed URI.
func Connect(ctx context.Context, log *logger.Logger, uri, database string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName(constants.ServiceName).
		SetConnectTimeout(constants.StoreConnectTimeout).
		SetServerSelectionTimeout(constants.StoreServerSelectionTimeout).
		SetMaxPoolSize(constants.MongoMaxPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.StorePingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Warnf("mongo not reachable at startup, requests will fail until it is: %v", err)
	} else {
		log.Infof("mongo connected: database=%s", database)
	}

	return client, client.Database(database), nil
}

// Pinger adapts a client to the readiness check.
type Pinger struct {
	client *mongo.Client
}

func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

func (p *Pinger) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx, readpref.Primary()); err != nil {
		return MapError(err, "ping", "admin")
	}
	return nil
}
