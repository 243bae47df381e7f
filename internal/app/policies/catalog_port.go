package policies

import (
	"context"

	"tourbook/internal/domain/catalog"
)

// Catalog is the read side of the catalog collaborator. Lookups of a missing
// package or hotel return catalog.ErrPackageNotFound / ErrHotelNotFound; a
// missing offer is not an error and yields nil.
type Catalog interface {
	Package(ctx context.Context, id catalog.PackageID) (catalog.Package, error)
	PackageGuides(ctx context.Context, id catalog.PackageID) ([]catalog.Guide, error)
	PackageHotels(ctx context.Context, id catalog.PackageID) ([]catalog.Hotel, error)
	Hotel(ctx context.Context, id catalog.HotelID) (catalog.Hotel, error)
	RoomsForHotel(ctx context.Context, id catalog.HotelID) ([]catalog.Room, error)
	RoomsForPackageHotel(ctx context.Context, pkg catalog.PackageID, hotel catalog.HotelID) ([]catalog.Room, error)
	Offer(ctx context.Context, id catalog.OfferID) (*catalog.Offer, error)
}
