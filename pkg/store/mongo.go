package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures the MongoDB report store.
type MongoConfig struct {
	// URI is the MongoDB connection string (e.g. "mongodb://localhost:27017").
	URI string

	// Database is the database name. Defaults to "journeyflow".
	Database string

	// Collection is the collection name. Defaults to "reports".
	Collection string

	// ConnectTimeout bounds the initial connection. Defaults to 10s.
	ConnectTimeout time.Duration
}

func (c *MongoConfig) withDefaults() {
	if c.Database == "" {
		c.Database = "journeyflow"
	}
	if c.Collection == "" {
		c.Collection = "reports"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

// MongoStore is a MongoDB-backed report store for the hosted API.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the reports collection.
// It pings the server and ensures the project/created_at index exists, so
// misconfiguration surfaces at startup rather than on first request.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	cfg.withDefaults()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)

	// List and Latest both query by project, newest first.
	_, err = collection.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "project", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, collection: collection}, nil
}

// Save persists a report, overwriting any existing report with the same ID.
func (s *MongoStore) Save(ctx context.Context, report *Report) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": report.ID},
		report,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Report, error) {
	var report Report
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &report, nil
}

// Latest retrieves the most recently created report for a project.
func (s *MongoStore) Latest(ctx context.Context, project string) (*Report, error) {
	var report Report
	err := s.collection.FindOne(ctx,
		bson.M{"project": project},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoReports
	}
	if err != nil {
		return nil, fmt.Errorf("latest report: %w", err)
	}
	return &report, nil
}

// List returns up to limit reports for a project, newest first.
func (s *MongoStore) List(ctx context.Context, project string, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	cursor, err := s.collection.Find(ctx,
		bson.M{"project": project},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}

// Delete removes a report.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
