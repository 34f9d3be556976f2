package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetAppName("gccn-chatbot"))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Stores bundles the repositories backed by one database.
type Stores struct {
	Users   *UserRepository
	History *HistoryRepository
}

// NewStores builds the repositories and creates their indexes.
func NewStores(ctx context.Context, db *mongo.Database) (*Stores, error) {
	s := &Stores{
		Users:   NewUserRepository(db),
		History: NewHistoryRepository(db),
	}
	if err := s.Users.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("users indexes: %w", err)
	}
	if err := s.History.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("history indexes: %w", err)
	}
	return s, nil
}
