package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"tourbook/internal/app/policies"
	domainbooking "tourbook/internal/domain/booking"
)

var ErrBookingNotFound = errors.New("memory: booking not found")

const statusPending = "pending"

type StoredBooking struct {
	ID        string
	Status    string
	Request   domainbooking.Request
	CreatedAt time.Time
}

// BookingStore accepts composed requests. A request id seen before returns
// the booking created for it instead of a second one.
type BookingStore struct {
	mu        sync.RWMutex
	items     map[string]StoredBooking
	byRequest map[string]string
}

func NewBookingStore() *BookingStore {
	return &BookingStore{
		items:     make(map[string]StoredBooking),
		byRequest: make(map[string]string),
	}
}

func (s *BookingStore) Create(ctx context.Context, req domainbooking.Request) (policies.CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byRequest[req.ID]; ok {
		b := s.items[id]
		return policies.CreateResult{BookingID: b.ID, Status: b.Status}, nil
	}
	b := StoredBooking{
		ID:        uuid.NewString(),
		Status:    statusPending,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}
	s.items[b.ID] = b
	if req.ID != "" {
		s.byRequest[req.ID] = b.ID
	}
	return policies.CreateResult{BookingID: b.ID, Status: b.Status}, nil
}

func (s *BookingStore) ByID(ctx context.Context, id string) (StoredBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return StoredBooking{}, ErrBookingNotFound
	}
	return b, nil
}

var _ policies.Bookings = (*BookingStore)(nil)
