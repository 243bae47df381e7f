package memory

import (
	"context"
	"sync"

	"tourbook/internal/app/policies"
	"tourbook/internal/domain/assignment"
	"tourbook/internal/domain/catalog"
)

// AssignmentStore keeps package/guide edges in insertion order. It is the
// single-edge collaborator the reconciler writes through.
type AssignmentStore struct {
	mu    sync.RWMutex
	edges []assignment.Assignment
}

func NewAssignmentStore() *AssignmentStore {
	return &AssignmentStore{}
}

func (s *AssignmentStore) Upsert(ctx context.Context, a assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.edges {
		if s.edges[i].Key == a.Key {
			s.edges[i].IsPrimary = a.IsPrimary
			return nil
		}
	}
	s.edges = append(s.edges, a)
	return nil
}

func (s *AssignmentStore) Remove(ctx context.Context, key assignment.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.edges {
		if s.edges[i].Key == key {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *AssignmentStore) Current(ctx context.Context, scope assignment.Scope) ([]assignment.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []assignment.Key
	for _, e := range s.edges {
		if scope.Matches(e.Key) {
			out = append(out, e.Key)
		}
	}
	return out, nil
}

// ForPackage returns the edges of one package with their primary flags.
func (s *AssignmentStore) ForPackage(ctx context.Context, id catalog.PackageID) ([]assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []assignment.Assignment
	for _, e := range s.edges {
		if e.PackageID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ policies.Assignments = (*AssignmentStore)(nil)
