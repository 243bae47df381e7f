package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tourbook/internal/app/commands"
	"tourbook/internal/app/middleware"
	"tourbook/internal/app/outbox"
	"tourbook/internal/app/policies"
	domainbooking "tourbook/internal/domain/booking"
	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/shared/events"
)

const submitBookingKey = "booking.submit"

var ErrTargetMissing = errors.New("booking: package or hotel id required")

// SubmitBookingCommand carries the client-held draft. PackageID selects the
// package flow; without it HotelID opens a hotel-only flow.
type SubmitBookingCommand struct {
	RequestID       string
	PackageID       string
	OfferID         string
	IncludeHotel    bool
	HotelID         string
	RoomIDs         []string
	GuideID         string
	CheckIn         string
	CheckOut        string
	Guests          string
	IdempotencyKeyV string
}

func (c SubmitBookingCommand) Key() string { return submitBookingKey }

func (c SubmitBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitBookingCommand) ResultPrototype() any { return &SubmitBookingResult{} }

func (c SubmitBookingCommand) Validate() error {
	if c.PackageID == "" && c.HotelID == "" {
		return ErrTargetMissing
	}
	return nil
}

type SubmitBookingResult struct {
	BookingID string                `json:"booking_id"`
	Status    string                `json:"status"`
	Request   domainbooking.Request `json:"request"`
}

type SubmitBookingHandler struct {
	Catalog     policies.Catalog
	Bookings    policies.Bookings
	Invalidator policies.Invalidator
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Logger      *slog.Logger
	Now         func() time.Time
	NewID       func() string
}

func (h *SubmitBookingHandler) Handle(ctx context.Context, cmd SubmitBookingCommand) (*SubmitBookingResult, error) {
	draft, err := h.draft(ctx, cmd)
	if err != nil {
		h.logger().ErrorContext(ctx, "booking draft load failed", "package_id", cmd.PackageID, "hotel_id", cmd.HotelID, "error", err)
		return nil, err
	}

	requestID := cmd.RequestID
	if requestID == "" {
		requestID = h.newID()
	}
	composer := domainbooking.NewComposer(draft)
	req, err := composer.Compose(requestID, h.now())
	if err != nil {
		return nil, err
	}

	res, err := h.Bookings.Create(ctx, req)
	if err != nil {
		h.logger().ErrorContext(ctx, "booking create failed", "request_id", req.ID, "kind", req.Kind, "error", err)
		failed := domainbooking.BookingFailed{RequestID: req.ID, Error: err.Error(), At: h.now()}
		if recErr := h.record(ctx, []events.DomainEvent{failed}); recErr != nil {
			h.logger().WarnContext(ctx, "booking failure not recorded", "request_id", req.ID, "error", recErr)
		}
		return nil, fmt.Errorf("booking: create %s: %w", req.ID, err)
	}

	evs := composer.Drain()
	evs = append(evs, domainbooking.BookingCreated{
		RequestID: req.ID,
		BookingID: res.BookingID,
		Kind:      req.Kind,
		At:        h.now(),
	})
	if err := h.record(ctx, evs); err != nil {
		return nil, err
	}

	if h.Invalidator != nil {
		if err := h.Invalidator.Invalidate(ctx, policies.TopicDataChanged); err != nil {
			h.logger().WarnContext(ctx, "data changed broadcast failed", "error", err)
		}
	}
	h.logger().InfoContext(ctx, "booking created", "request_id", req.ID, "booking_id", res.BookingID, "kind", req.Kind, "total", req.Price.GrandTotal.String())

	return &SubmitBookingResult{BookingID: res.BookingID, Status: res.Status, Request: req}, nil
}

func (h *SubmitBookingHandler) draft(ctx context.Context, cmd SubmitBookingCommand) (*domainbooking.Draft, error) {
	var d *domainbooking.Draft
	if cmd.PackageID == "" {
		hotel, rooms, err := loadHotel(ctx, h.Catalog, catalog.HotelID(cmd.HotelID))
		if err != nil {
			return nil, err
		}
		d = domainbooking.NewHotelDraft(hotel, rooms)
	} else {
		b, err := loadPackage(ctx, h.Catalog, catalog.PackageID(cmd.PackageID), catalog.OfferID(cmd.OfferID), false)
		if err != nil {
			return nil, err
		}
		d = domainbooking.NewPackageDraft(b.pkg, b.guides)
		d.SetOffer(b.offer)
		// Only the submitted guide counts. The primary preselection is for the
		// context view; an empty id clears it.
		if err := d.SelectGuide(catalog.GuideID(cmd.GuideID)); errors.Is(err, domainbooking.ErrUnknownGuide) {
			_ = d.SelectGuide("")
		}
		if cmd.IncludeHotel {
			_ = d.SetIncludeHotel(true)
			if cmd.HotelID != "" {
				hotel, rooms, err := loadHotel(ctx, h.Catalog, catalog.HotelID(cmd.HotelID))
				if err != nil {
					return nil, err
				}
				if err := d.SelectHotel(hotel); err != nil {
					return nil, err
				}
				d.ApplyRooms(hotel.ID, rooms)
			}
		}
	}
	d.SetDates(cmd.CheckIn, cmd.CheckOut)
	d.SetGuests(cmd.Guests)
	for _, id := range roomIDs(cmd.RoomIDs) {
		d.ToggleRoom(id)
	}
	return d, nil
}

func (h *SubmitBookingHandler) record(ctx context.Context, evs []events.DomainEvent) error {
	enc := h.Encoder
	if enc == nil {
		enc = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, h.Outbox, enc, evs)
}

func (h *SubmitBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *SubmitBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *SubmitBookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

var _ commands.Handler[SubmitBookingCommand, *SubmitBookingResult] = (*SubmitBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*SubmitBookingCommand)(nil)
var _ middleware.SelfValidating = SubmitBookingCommand{}
