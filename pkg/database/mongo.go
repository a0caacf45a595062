// Package database owns the MongoDB connection and the collection handles
// the rest of the application works through. The client is opened once at
// startup and shared by every request.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/deviceexpress/config"
)

// Sentinel error kinds surfaced by the store layer. Handlers map them to the
// response envelope via response.FromError.
var (
	ErrNotFound  = errors.New("database: document not found")
	ErrDuplicate = errors.New("database: duplicate document")
)

// Store bundles the mongo client with the named collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Users         *mongo.Collection
	Categories    *mongo.Collection
	Products      *mongo.Collection
	Bookings      *mongo.Collection
	Payments      *mongo.Collection
	ReportedItems *mongo.Collection
	Reviews       *mongo.Collection
	Logs          *mongo.Collection
	FailedJobs    *mongo.Collection
}

// Connect opens the client, verifies it with a ping, and wires the
// collection handles. Returns an error instead of exiting so the caller can
// shut down gracefully.
func Connect(ctx context.Context) (*Store, error) {
	opts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	db := client.Database(config.MongoDB())

	return &Store{
		client:        client,
		db:            db,
		Users:         db.Collection("users"),
		Categories:    db.Collection("categories"),
		Products:      db.Collection("products"),
		Bookings:      db.Collection("bookings"),
		Payments:      db.Collection("payments"),
		ReportedItems: db.Collection("reportedItems"),
		Reviews:       db.Collection("reviews"),
		Logs:          db.Collection("logs"),
		FailedJobs:    db.Collection("failedJobs"),
	}, nil
}

// Ping verifies the connection is still live. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Disconnect closes the client. Call once on shutdown.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes every deployment needs: the unique user
// email key that makes registration idempotent, the catalog browse index,
// and a time index on the log sink.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := map[*mongo.Collection][]mongo.IndexModel{
		s.Users: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		s.Products: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "sellerEmail", Value: 1}}},
		},
		s.Bookings: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		s.Logs: {
			{Keys: bson.D{{Key: "time", Value: -1}}},
		},
	}

	for col, idx := range models {
		if _, err := col.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("database: indexes for %s: %w", col.Name(), err)
		}
	}
	return nil
}

// PruneLogs deletes log documents older than the retention window.
func (s *Store) PruneLogs(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	if _, err := s.Logs.DeleteMany(ctx, bson.M{"time": bson.M{"$lt": cutoff}}); err != nil {
		return fmt.Errorf("database: prune logs: %w", err)
	}
	return nil
}

// IsDup reports whether err is a mongo duplicate-key write error.
func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return mongo.IsDuplicateKeyError(err)
}
