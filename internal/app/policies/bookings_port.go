package policies

import (
	"context"

	domainbooking "tourbook/internal/domain/booking"
)

type CreateResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// Bookings accepts composed requests. The request id is the collaborator's
// deduplication anchor.
type Bookings interface {
	Create(ctx context.Context, req domainbooking.Request) (CreateResult, error)
}
