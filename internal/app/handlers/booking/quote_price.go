package booking

import (
	"context"
	"fmt"
	"time"

	"tourbook/internal/app/dto"
	"tourbook/internal/app/policies"
	"tourbook/internal/app/queries"
	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/shared/daterange"
)

const quotePriceKey = "booking.quote"

// QuotePriceQuery prices a selection without validating it. Anything left
// out simply contributes zero.
type QuotePriceQuery struct {
	PackageID string
	OfferID   string
	HotelID   string
	RoomIDs   []string
	GuideID   string
	CheckIn   string
	CheckOut  string
}

func (q QuotePriceQuery) Key() string { return quotePriceKey }

type QuotePriceHandler struct {
	Catalog policies.Catalog
	Now     func() time.Time
}

func (h *QuotePriceHandler) Handle(ctx context.Context, q QuotePriceQuery) (dto.Quote, error) {
	in := pricing.Input{At: time.Now().UTC()}
	if h.Now != nil {
		in.At = h.Now()
	}

	var fallback *int
	if q.PackageID != "" {
		b, err := loadPackage(ctx, h.Catalog, catalog.PackageID(q.PackageID), catalog.OfferID(q.OfferID), false)
		if err != nil {
			return dto.Quote{}, err
		}
		in.Package = &b.pkg
		in.Offer = b.offer
		in.Guide = catalog.FindGuide(b.guides, catalog.GuideID(q.GuideID))
		fallback = b.pkg.Duration()
	}
	if q.HotelID != "" && len(q.RoomIDs) > 0 {
		rooms, err := h.Catalog.RoomsForHotel(ctx, catalog.HotelID(q.HotelID))
		if err != nil {
			return dto.Quote{}, fmt.Errorf("load rooms of %s: %w", q.HotelID, err)
		}
		in.Rooms = catalog.PickRooms(rooms, roomIDs(q.RoomIDs))
	}
	in.Nights = daterange.Nights(q.CheckIn, q.CheckOut, fallback)

	return dto.MapQuote(pricing.Price(in)), nil
}

var _ queries.Handler[QuotePriceQuery, dto.Quote] = (*QuotePriceHandler)(nil)
