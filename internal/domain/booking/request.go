package booking

import (
	"time"

	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/shared/daterange"
)

// Request is the validated payload handed to the booking collaborator.
// Optional attributes are omitted rather than sent as false or empty.
type Request struct {
	ID         string            `json:"request_id"`
	Kind       Kind              `json:"kind"`
	PackageID  catalog.PackageID `json:"package_id,omitempty"`
	GuestCount int               `json:"guest_count"`
	OfferID    catalog.OfferID   `json:"offer_id,omitempty"`
	GuideID    catalog.GuideID   `json:"guide_id,omitempty"`

	Breakfast bool   `json:"breakfast,omitempty"`
	Lunch     bool   `json:"lunch,omitempty"`
	Dinner    bool   `json:"dinner,omitempty"`
	Transport string `json:"transport,omitempty"`

	HotelID  catalog.HotelID  `json:"hotel_id,omitempty"`
	RoomIDs  []catalog.RoomID `json:"room_ids,omitempty"`
	CheckIn  string           `json:"check_in,omitempty"`
	CheckOut string           `json:"check_out,omitempty"`
	Nights   *int             `json:"nights,omitempty"`

	Price      pricing.Breakdown `json:"price"`
	ComposedAt time.Time         `json:"composed_at"`
}

func (r *Request) copyPackageAttributes(pkg *catalog.Package) {
	if pkg == nil {
		return
	}
	r.Breakfast = pkg.Meals.Breakfast
	r.Lunch = pkg.Meals.Lunch
	r.Dinner = pkg.Meals.Dinner
	r.Transport = pkg.Transport
}

func (r *Request) attachHotel(hotelID catalog.HotelID, rooms []catalog.Room, dr daterange.DateRange, nights int) {
	r.HotelID = hotelID
	r.RoomIDs = make([]catalog.RoomID, 0, len(rooms))
	for _, room := range rooms {
		r.RoomIDs = append(r.RoomIDs, room.ID)
	}
	r.CheckIn = daterange.FormatDay(dr.CheckIn)
	r.CheckOut = daterange.FormatDay(dr.CheckOut)
	n := nights
	r.Nights = &n
}

// HasHotel reports whether the request carries a hotel bundle.
func (r Request) HasHotel() bool {
	return r.Kind == KindHotelOnly || r.Kind == KindPackageWithHotel
}
