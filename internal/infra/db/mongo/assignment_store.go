package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourbook/internal/app/policies"
	"tourbook/internal/domain/assignment"
	"tourbook/internal/domain/catalog"
)

// AssignmentStore keeps one document per package/guide edge.
type AssignmentStore struct {
	col *mongo.Collection
}

func NewAssignmentStore(db *mongo.Database) *AssignmentStore {
	return &AssignmentStore{col: db.Collection("package_guides")}
}

// EnsureIndexes builds the unique edge index Upsert relies on.
func (s *AssignmentStore) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, s.col.Name(), s.col.Indexes(), assignmentIndexes())
}

func assignmentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "package_id", Value: 1}, {Key: "guide_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "guide_id", Value: 1}}},
	}
}

func (s *AssignmentStore) Upsert(ctx context.Context, a assignment.Assignment) error {
	filter := bson.M{"package_id": a.PackageID, "guide_id": a.GuideID}
	update := bson.M{
		"$set":         bson.M{"is_primary": a.IsPrimary, "updated_at": time.Now().UTC()},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}
	_, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Remove deletes the edge; removing a missing edge is not an error.
func (s *AssignmentStore) Remove(ctx context.Context, key assignment.Key) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"package_id": key.PackageID, "guide_id": key.GuideID})
	return err
}

func (s *AssignmentStore) Current(ctx context.Context, scope assignment.Scope) ([]assignment.Key, error) {
	docs, err := s.find(ctx, scopeFilter(scope))
	if err != nil {
		return nil, err
	}
	out := make([]assignment.Key, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.key())
	}
	return out, nil
}

// ForPackage returns the edges of one package with their primary flags.
func (s *AssignmentStore) ForPackage(ctx context.Context, id catalog.PackageID) ([]assignment.Assignment, error) {
	docs, err := s.find(ctx, bson.M{"package_id": id})
	if err != nil {
		return nil, err
	}
	out := make([]assignment.Assignment, 0, len(docs))
	for _, d := range docs {
		out = append(out, assignment.Assignment{Key: d.key(), IsPrimary: d.IsPrimary})
	}
	return out, nil
}

func (s *AssignmentStore) find(ctx context.Context, filter bson.M) ([]assignmentDocument, error) {
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []assignmentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func scopeFilter(scope assignment.Scope) bson.M {
	if scope.PackageID != "" {
		return bson.M{"package_id": scope.PackageID}
	}
	return bson.M{"guide_id": scope.GuideID}
}

type assignmentDocument struct {
	PackageID string    `bson:"package_id"`
	GuideID   string    `bson:"guide_id"`
	IsPrimary bool      `bson:"is_primary"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d assignmentDocument) key() assignment.Key {
	return assignment.Key{PackageID: catalog.PackageID(d.PackageID), GuideID: catalog.GuideID(d.GuideID)}
}

var _ policies.Assignments = (*AssignmentStore)(nil)
