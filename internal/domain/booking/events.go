package booking

import (
	"time"

	"tourbook/internal/domain/catalog"
)

type BookingComposed struct {
	RequestID  string
	Kind       Kind
	PackageID  catalog.PackageID
	HotelID    catalog.HotelID
	GuestCount int
	GrandTotal string
	At         time.Time
}

func (e BookingComposed) EventName() string     { return "booking.composed" }
func (e BookingComposed) AggregateID() string   { return e.RequestID }
func (e BookingComposed) OccurredAt() time.Time { return e.At }

type BookingCreated struct {
	RequestID string
	BookingID string
	Kind      Kind
	At        time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return e.RequestID }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingFailed struct {
	RequestID string
	Error     string
	At        time.Time
}

func (e BookingFailed) EventName() string     { return "booking.failed" }
func (e BookingFailed) AggregateID() string   { return e.RequestID }
func (e BookingFailed) OccurredAt() time.Time { return e.At }
