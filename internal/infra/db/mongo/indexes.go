package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexBuilder is a store whose guarantees rest on indexes that must exist
// before it serves traffic.
type IndexBuilder interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes builds the indexes of every store and stops at the first
// failure.
func EnsureIndexes(ctx context.Context, stores ...IndexBuilder) error {
	for _, s := range stores {
		if err := s.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}

type indexCreator interface {
	CreateMany(ctx context.Context, models []mongo.IndexModel, opts ...*options.CreateIndexesOptions) ([]string, error)
}

func createIndexes(ctx context.Context, collection string, iv indexCreator, models []mongo.IndexModel) error {
	if _, err := iv.CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo: create indexes on %s: %w", collection, err)
	}
	return nil
}
