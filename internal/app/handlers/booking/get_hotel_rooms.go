package booking

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tourbook/internal/app/dto"
	"tourbook/internal/app/policies"
	"tourbook/internal/app/queries"
	domainbooking "tourbook/internal/domain/booking"
	"tourbook/internal/domain/capacity"
	"tourbook/internal/domain/catalog"
)

const getHotelRoomsKey = "booking.hotel_rooms"

var ErrHotelIDMissing = errors.New("booking: hotel id required")

// GetHotelRoomsQuery lists a hotel's rooms marked for a guest count. With a
// package id the rooms pre-mapped to that package come along read-only.
type GetHotelRoomsQuery struct {
	HotelID   string
	PackageID string
	Guests    string
	Selected  []string
}

func (q GetHotelRoomsQuery) Key() string { return getHotelRoomsKey }

func (q GetHotelRoomsQuery) Validate() error {
	if q.HotelID == "" {
		return ErrHotelIDMissing
	}
	return nil
}

type GetHotelRoomsHandler struct {
	Catalog policies.Catalog
}

func (h *GetHotelRoomsHandler) Handle(ctx context.Context, q GetHotelRoomsQuery) (dto.HotelRooms, error) {
	guests, ok := domainbooking.ParseGuests(q.Guests)
	if !ok {
		return dto.HotelRooms{}, &domainbooking.Rejection{Reason: domainbooking.ReasonInvalidGuests}
	}
	hotelID := catalog.HotelID(q.HotelID)

	var rooms, packageRooms []catalog.Room
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := h.Catalog.RoomsForHotel(gctx, hotelID)
		if err != nil {
			return fmt.Errorf("load rooms of %s: %w", hotelID, err)
		}
		rooms = r
		return nil
	})
	if q.PackageID != "" {
		pkgID := catalog.PackageID(q.PackageID)
		g.Go(func() error {
			r, err := h.Catalog.RoomsForPackageHotel(gctx, pkgID, hotelID)
			if err != nil {
				return fmt.Errorf("load package rooms of %s/%s: %w", pkgID, hotelID, err)
			}
			packageRooms = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dto.HotelRooms{}, err
	}

	sel := capacity.NewSelection(roomIDs(q.Selected)...)
	sel.Retain(rooms)
	return dto.HotelRooms{
		HotelID:       q.HotelID,
		Guests:        guests,
		Rooms:         capacity.Mark(rooms, guests, sel),
		TotalCapacity: capacity.TotalCapacity(rooms),
		PackageRooms:  packageRooms,
	}, nil
}

var _ queries.Handler[GetHotelRoomsQuery, dto.HotelRooms] = (*GetHotelRoomsHandler)(nil)
