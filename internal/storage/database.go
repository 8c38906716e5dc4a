package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// MongoStorage inserts one document per report. Documents use the bson
// tags on types.Report and are indexed by company and generation time.
type MongoStorage struct {
	client *mongo.Client
	coll   *mongo.Collection
	count  int
	logger *slog.Logger
}

// NewMongoStorage connects, pings and makes sure the report index exists.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("connect: %w", err)}
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("ping: %w", err)}
	}

	s := &MongoStorage{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger.With("component", "mongo_storage", "collection", collection),
	}
	if err := s.ensureIndex(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &types.StorageError{Backend: "mongodb", Err: err}
	}
	return s, nil
}

func (s *MongoStorage) ensureIndex(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company", Value: 1}, {Key: "generated_at", Value: -1}},
		Options: options.Index().SetName("company_generated_at"),
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(ctx context.Context, reports []*types.Report) error {
	if len(reports) == 0 {
		return nil
	}
	docs := make([]any, 0, len(reports))
	for _, r := range reports {
		docs = append(docs, r)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert reports: %w", err)
	}
	s.count += len(res.InsertedIDs)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "inserted", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// MultiStorage exports every report to each backend in turn. All backends
// are attempted; the first failure is returned.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Store(ctx context.Context, reports []*types.Report) error {
	return s.each(func(b Storage) error { return b.Store(ctx, reports) })
}

func (s *MultiStorage) Close() error {
	return s.each(Storage.Close)
}

func (s *MultiStorage) each(fn func(Storage) error) error {
	var first error
	for _, b := range s.backends {
		if err := fn(b); err != nil {
			s.logger.Error("export backend failed", "backend", b.Name(), "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
