package booking

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tourbook/internal/app/policies"
	"tourbook/internal/domain/catalog"
)

type packageBundle struct {
	pkg    catalog.Package
	guides []catalog.Guide
	hotels []catalog.Hotel
	offer  *catalog.Offer
}

// loadPackage fetches the package and its satellites concurrently. Any
// failure fails the whole load.
func loadPackage(ctx context.Context, cat policies.Catalog, id catalog.PackageID, offerID catalog.OfferID, withHotels bool) (packageBundle, error) {
	var b packageBundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pkg, err := cat.Package(gctx, id)
		if err != nil {
			return fmt.Errorf("load package %s: %w", id, err)
		}
		b.pkg = pkg
		return nil
	})
	g.Go(func() error {
		guides, err := cat.PackageGuides(gctx, id)
		if err != nil {
			return fmt.Errorf("load guides of %s: %w", id, err)
		}
		b.guides = guides
		return nil
	})
	if withHotels {
		g.Go(func() error {
			hotels, err := cat.PackageHotels(gctx, id)
			if err != nil {
				return fmt.Errorf("load hotels of %s: %w", id, err)
			}
			b.hotels = hotels
			return nil
		})
	}
	if offerID != "" {
		g.Go(func() error {
			offer, err := cat.Offer(gctx, offerID)
			if err != nil {
				return fmt.Errorf("load offer %s: %w", offerID, err)
			}
			b.offer = offer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return packageBundle{}, err
	}
	return b, nil
}

// loadHotel fetches a hotel and its rooms.
func loadHotel(ctx context.Context, cat policies.Catalog, id catalog.HotelID) (catalog.Hotel, []catalog.Room, error) {
	var (
		hotel catalog.Hotel
		rooms []catalog.Room
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := cat.Hotel(gctx, id)
		if err != nil {
			return fmt.Errorf("load hotel %s: %w", id, err)
		}
		hotel = h
		return nil
	})
	g.Go(func() error {
		r, err := cat.RoomsForHotel(gctx, id)
		if err != nil {
			return fmt.Errorf("load rooms of %s: %w", id, err)
		}
		rooms = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return catalog.Hotel{}, nil, err
	}
	return hotel, rooms, nil
}

func roomIDs(raw []string) []catalog.RoomID {
	seen := make(map[string]struct{}, len(raw))
	out := make([]catalog.RoomID, 0, len(raw))
	for _, id := range raw {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, catalog.RoomID(id))
	}
	return out
}
