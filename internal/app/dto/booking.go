package dto

import (
	"tourbook/internal/domain/capacity"
	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/shared/money"
)

// PackageContext is everything the package booking page loads up front.
type PackageContext struct {
	Package        catalog.Package `json:"package"`
	Guides         []catalog.Guide `json:"guides"`
	Hotels         []catalog.Hotel `json:"hotels"`
	Offer          *catalog.Offer  `json:"offer,omitempty"`
	OfferApplies   bool            `json:"offer_applies"`
	PrimaryGuideID string          `json:"primary_guide_id,omitempty"`
	// Bookable is false when the package has no guides.
	Bookable bool `json:"bookable"`
}

type HotelRooms struct {
	HotelID       string                `json:"hotel_id"`
	Guests        int                   `json:"guests"`
	Rooms         []capacity.MarkedRoom `json:"rooms"`
	TotalCapacity int                   `json:"total_capacity"`
	// PackageRooms are pre-mapped to the package and cannot be selected.
	PackageRooms []catalog.Room `json:"package_rooms,omitempty"`
}

type Quote struct {
	pricing.Breakdown
	Discount money.Money `json:"discount"`
}

func MapQuote(b pricing.Breakdown) Quote {
	return Quote{Breakdown: b, Discount: b.Discount()}
}

func MapPackageContext(pkg catalog.Package, guides []catalog.Guide, hotels []catalog.Hotel, offer *catalog.Offer, offerApplies bool) PackageContext {
	out := PackageContext{
		Package:      pkg,
		Guides:       emptyIfNil(guides),
		Hotels:       emptyIfNil(hotels),
		Offer:        offer,
		OfferApplies: offerApplies,
		Bookable:     len(guides) > 0,
	}
	for _, g := range guides {
		if g.IsPrimary {
			out.PrimaryGuideID = string(g.ID)
			break
		}
	}
	return out
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
