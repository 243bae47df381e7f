package booking

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/shared/daterange"
	"tourbook/internal/domain/shared/events"
)

// Kind is the tagged variant of a composed booking.
type Kind string

const (
	KindHotelOnly        Kind = "hotel_only"
	KindPackageOnly      Kind = "package_only"
	KindPackageWithHotel Kind = "package_with_hotel"
)

type Reason string

const (
	ReasonInvalidGuests Reason = "invalid guest count"
	ReasonMissingDates  Reason = "missing dates"
	ReasonNoRooms       Reason = "no rooms selected"
	ReasonNoGuides      Reason = "no guides available"
	ReasonNoGuide       Reason = "no guide selected"
	ReasonNoHotel       Reason = "no hotel selected"
)

// Rejection is a user-correctable validation failure. It never reaches the
// network layer.
type Rejection struct {
	Reason Reason
}

func (r *Rejection) Error() string {
	return "booking: " + string(r.Reason)
}

func reject(reason Reason) *Rejection {
	return &Rejection{Reason: reason}
}

// AsRejection unwraps a *Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateComposed   State = "composed"
)

// Composer drives one submission attempt for a draft:
// idle -> validating -> rejected | composed. Composed is terminal until Reset.
type Composer struct {
	draft     *Draft
	state     State
	rejection *Rejection
	request   *Request
	events.EventRecorder
}

func NewComposer(d *Draft) *Composer {
	return &Composer{draft: d, state: StateIdle}
}

func (c *Composer) State() State          { return c.state }
func (c *Composer) Rejection() *Rejection { return c.rejection }
func (c *Composer) Request() *Request     { return c.request }
func (c *Composer) Draft() *Draft         { return c.draft }

// Reset starts a new attempt. The draft is kept.
func (c *Composer) Reset() {
	c.state = StateIdle
	c.rejection = nil
	c.request = nil
	c.ClearEvents()
}

// Compose validates the draft and builds the request. A failed attempt
// leaves the draft untouched so the user can fix it and try again.
func (c *Composer) Compose(requestID string, at time.Time) (Request, error) {
	if c.state == StateComposed {
		return Request{}, ErrAlreadyComposed
	}
	if requestID == "" {
		return Request{}, ErrRequestIDMissing
	}
	c.state = StateValidating
	c.rejection = nil

	req, rej := c.build(requestID, at.UTC())
	if rej != nil {
		c.state = StateRejected
		c.rejection = rej
		return Request{}, rej
	}
	c.state = StateComposed
	c.request = &req
	c.Record(BookingComposed{
		RequestID:  req.ID,
		Kind:       req.Kind,
		PackageID:  req.PackageID,
		HotelID:    req.HotelID,
		GuestCount: req.GuestCount,
		GrandTotal: req.Price.GrandTotal.String(),
		At:         at.UTC(),
	})
	return req, nil
}

// build checks the preconditions in order and assembles the payload. Offers
// are scoped to packages, so a hotel-only request never carries one even if
// the draft holds an offer.
func (c *Composer) build(id string, at time.Time) (Request, *Rejection) {
	d := c.draft
	if d.family == familyPackage {
		return c.buildPackage(id, at)
	}

	guests, ok := ParseGuests(d.guests)
	if !ok {
		return Request{}, reject(ReasonInvalidGuests)
	}
	dr, ok := d.stay()
	if !ok {
		return Request{}, reject(ReasonMissingDates)
	}
	rooms := d.selectedRooms()
	if len(rooms) == 0 {
		return Request{}, reject(ReasonNoRooms)
	}
	nights := dr.Nights()
	req := Request{
		ID:         id,
		Kind:       KindHotelOnly,
		GuestCount: guests,
		ComposedAt: at,
	}
	req.attachHotel(d.hotel.ID, rooms, dr, nights)
	req.Price = pricing.Price(pricing.Input{Rooms: rooms, Nights: nights, At: at})
	return req, nil
}

func (c *Composer) buildPackage(id string, at time.Time) (Request, *Rejection) {
	d := c.draft
	if len(d.guides) == 0 {
		return Request{}, reject(ReasonNoGuides)
	}
	guests, ok := ParseGuests(d.guests)
	if !ok {
		return Request{}, reject(ReasonInvalidGuests)
	}
	guide := catalog.FindGuide(d.guides, d.guideID)
	if guide == nil {
		return Request{}, reject(ReasonNoGuide)
	}

	req := Request{
		ID:         id,
		Kind:       KindPackageOnly,
		PackageID:  d.pkg.ID,
		GuestCount: guests,
		GuideID:    guide.ID,
		ComposedAt: at,
	}
	if d.offer != nil {
		req.OfferID = d.offer.ID
	}
	req.copyPackageAttributes(d.pkg)

	var rooms []catalog.Room
	nights := daterange.Nights(d.checkIn, d.checkOut, d.pkg.Duration())
	if d.includeHotel {
		if d.hotel == nil {
			return Request{}, reject(ReasonNoHotel)
		}
		dr, ok := d.stay()
		if !ok {
			return Request{}, reject(ReasonMissingDates)
		}
		rooms = d.selectedRooms()
		if len(rooms) == 0 {
			return Request{}, reject(ReasonNoRooms)
		}
		nights = dr.Nights()
		req.Kind = KindPackageWithHotel
		req.attachHotel(d.hotel.ID, rooms, dr, nights)
	}

	req.Price = pricing.Price(pricing.Input{
		Package: d.pkg,
		Offer:   d.offer,
		Rooms:   rooms,
		Guide:   guide,
		Nights:  nights,
		At:      at,
	})
	return req, nil
}

// stay returns the parsed dates when both are present.
func (d *Draft) stay() (daterange.DateRange, bool) {
	in, okIn := daterange.ParseDay(d.checkIn)
	out, okOut := daterange.ParseDay(d.checkOut)
	if !okIn || !okOut {
		return daterange.DateRange{}, false
	}
	return daterange.DateRange{CheckIn: in, CheckOut: out}, true
}

// ParseGuests reads the guest count field. Blank means one guest; anything
// that is not a positive integer is invalid.
func ParseGuests(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
