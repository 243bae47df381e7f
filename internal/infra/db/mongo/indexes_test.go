package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeIndexes struct {
	models []mongo.IndexModel
	err    error
}

func (f *fakeIndexes) CreateMany(_ context.Context, models []mongo.IndexModel, _ ...*options.CreateIndexesOptions) ([]string, error) {
	f.models = append(f.models, models...)
	return nil, f.err
}

type builderFunc func(ctx context.Context) error

func (f builderFunc) EnsureIndexes(ctx context.Context) error { return f(ctx) }

func TestCreateIndexesReportsFailure(t *testing.T) {
	denied := errors.New("not authorized")
	iv := &fakeIndexes{err: denied}

	err := createIndexes(context.Background(), "package_guides", iv, assignmentIndexes())

	require.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "package_guides")
	assert.Len(t, iv.models, 2)
}

func TestAssignmentIndexesKeepEdgesUnique(t *testing.T) {
	models := assignmentIndexes()
	require.NotEmpty(t, models)

	edge := models[0]
	assert.Equal(t, bson.D{{Key: "package_id", Value: 1}, {Key: "guide_id", Value: 1}}, edge.Keys)
	require.NotNil(t, edge.Options)
	require.NotNil(t, edge.Options.Unique)
	assert.True(t, *edge.Options.Unique)
}

func TestIdempotencyIndexesCarryTTL(t *testing.T) {
	models := idempotencyIndexes(90 * time.Minute)
	require.Len(t, models, 2)
	require.NotNil(t, models[1].Options.ExpireAfterSeconds)
	assert.Equal(t, int32(5400), *models[1].Options.ExpireAfterSeconds)
}

func TestEnsureIndexesStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	ok := builderFunc(func(context.Context) error { calls++; return nil })
	bad := builderFunc(func(context.Context) error { calls++; return boom })

	err := EnsureIndexes(context.Background(), ok, bad, ok)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
