package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rental-desk-backend/internal/repository"
)

const sessionsCollection = "rental_sessions"

// Store is the MongoDB-backed alternative to the Postgres store.
type Store struct {
	client *mongo.Client
	repository.SessionRepository
	sessions *mongo.Collection
}

// Connect connects to MongoDB and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

func NewStore(client *mongo.Client, database string) *Store {
	coll := client.Database(database).Collection(sessionsCollection)
	return &Store{
		client:            client,
		SessionRepository: NewSessionRepository(coll),
		sessions:          coll,
	}
}

// EnsureIndexes creates the indexes backing the listing and lookup queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "vehicle_plate", Value: 1}}},
		{Keys: bson.D{{Key: "customer_phone", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
