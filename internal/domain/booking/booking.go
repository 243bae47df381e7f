package booking

import (
	"errors"

	"tourbook/internal/domain/capacity"
	"tourbook/internal/domain/catalog"
)

var (
	ErrUnknownGuide     = errors.New("booking: guide not offered for package")
	ErrHotelNotBundled  = errors.New("booking: hotel bundle not enabled")
	ErrNotPackageDraft  = errors.New("booking: operation requires a package draft")
	ErrAlreadyComposed  = errors.New("booking: attempt already composed")
	ErrRequestIDMissing = errors.New("booking: request id required")
)

type family int

const (
	familyHotel family = iota + 1
	familyPackage
)

// Draft is the client-held selection state of one booking flow. Whether the
// flow is hotel-only or package-based is fixed when the draft is opened.
type Draft struct {
	family family

	pkg    *catalog.Package
	guides []catalog.Guide
	offer  *catalog.Offer

	includeHotel bool
	hotel        *catalog.Hotel
	rooms        []catalog.Room
	packageRooms []catalog.Room
	selection    capacity.Selection

	guideID  catalog.GuideID
	checkIn  string
	checkOut string
	guests   string
}

// NewHotelDraft opens a hotel-only flow.
func NewHotelDraft(hotel catalog.Hotel, rooms []catalog.Room) *Draft {
	h := hotel
	return &Draft{
		family: familyHotel,
		hotel:  &h,
		rooms:  append([]catalog.Room(nil), rooms...),
	}
}

// NewPackageDraft opens a package flow. The package's primary guide, if any,
// starts out selected.
func NewPackageDraft(pkg catalog.Package, guides []catalog.Guide) *Draft {
	p := pkg
	d := &Draft{
		family: familyPackage,
		pkg:    &p,
		guides: append([]catalog.Guide(nil), guides...),
	}
	for _, g := range d.guides {
		if g.IsPrimary {
			d.guideID = g.ID
			break
		}
	}
	return d
}

func (d *Draft) IsPackage() bool { return d.family == familyPackage }

// Bookable is false for a package without guides. That state cannot be
// fixed from the client side.
func (d *Draft) Bookable() bool {
	return d.family != familyPackage || len(d.guides) > 0
}

func (d *Draft) Package() *catalog.Package { return d.pkg }
func (d *Draft) Guides() []catalog.Guide   { return append([]catalog.Guide(nil), d.guides...) }
func (d *Draft) Offer() *catalog.Offer     { return d.offer }
func (d *Draft) Hotel() *catalog.Hotel     { return d.hotel }
func (d *Draft) Rooms() []catalog.Room     { return append([]catalog.Room(nil), d.rooms...) }
func (d *Draft) IncludeHotel() bool        { return d.includeHotel }
func (d *Draft) GuideID() catalog.GuideID  { return d.guideID }
func (d *Draft) Selection() []catalog.RoomID {
	return d.selection.IDs()
}

// PackageRooms are rooms pre-mapped to the package and hotel. They are shown
// but never selectable.
func (d *Draft) PackageRooms() []catalog.Room {
	return append([]catalog.Room(nil), d.packageRooms...)
}

func (d *Draft) SetOffer(offer *catalog.Offer) {
	d.offer = offer
}

func (d *Draft) SetDates(checkIn, checkOut string) {
	d.checkIn = checkIn
	d.checkOut = checkOut
}

func (d *Draft) Dates() (string, string) {
	return d.checkIn, d.checkOut
}

// SetGuests stores the raw guest count as typed; it is parsed on compose.
func (d *Draft) SetGuests(raw string) {
	d.guests = raw
}

func (d *Draft) SelectGuide(id catalog.GuideID) error {
	if d.family != familyPackage {
		return ErrNotPackageDraft
	}
	if id == "" {
		d.guideID = ""
		return nil
	}
	if catalog.FindGuide(d.guides, id) == nil {
		return ErrUnknownGuide
	}
	d.guideID = id
	return nil
}

// SetIncludeHotel toggles the hotel bundle of a package draft. Turning it off
// drops hotel, rooms, selection and dates right away.
func (d *Draft) SetIncludeHotel(include bool) error {
	if d.family != familyPackage {
		return ErrNotPackageDraft
	}
	d.includeHotel = include
	if !include {
		d.hotel = nil
		d.rooms = nil
		d.packageRooms = nil
		d.selection.Clear()
		d.checkIn, d.checkOut = "", ""
	}
	return nil
}

// SelectHotel picks the bundled hotel. Changing hotels clears loaded rooms
// and the room selection.
func (d *Draft) SelectHotel(hotel catalog.Hotel) error {
	if d.family != familyPackage {
		return ErrNotPackageDraft
	}
	if !d.includeHotel {
		return ErrHotelNotBundled
	}
	if d.hotel != nil && d.hotel.ID == hotel.ID {
		return nil
	}
	h := hotel
	d.hotel = &h
	d.rooms = nil
	d.packageRooms = nil
	d.selection.Clear()
	return nil
}

func (d *Draft) currentHotel(id catalog.HotelID) bool {
	return d.hotel != nil && d.hotel.ID == id
}

// ApplyRooms installs a rooms response for hotelID. A response for a hotel
// that is no longer selected is stale and dropped; the return value reports
// whether it was applied.
func (d *Draft) ApplyRooms(hotelID catalog.HotelID, rooms []catalog.Room) bool {
	if !d.currentHotel(hotelID) {
		return false
	}
	d.rooms = append([]catalog.Room(nil), rooms...)
	d.selection.Retain(d.rooms)
	return true
}

// ApplyPackageRooms installs the read-only package/hotel room mapping, with
// the same stale-response guard as ApplyRooms.
func (d *Draft) ApplyPackageRooms(hotelID catalog.HotelID, rooms []catalog.Room) bool {
	if !d.currentHotel(hotelID) {
		return false
	}
	d.packageRooms = append([]catalog.Room(nil), rooms...)
	return true
}

// ToggleRoom flips a loaded room in or out of the selection regardless of
// its capacity. Unknown room ids are ignored.
func (d *Draft) ToggleRoom(id catalog.RoomID) bool {
	for _, r := range d.rooms {
		if r.ID == id {
			return d.selection.Toggle(id)
		}
	}
	return false
}

// SelectDefaultRooms bulk-selects every room eligible for the current guest
// count.
func (d *Draft) SelectDefaultRooms() {
	guests, ok := ParseGuests(d.guests)
	if !ok {
		guests = 1
	}
	d.selection.SelectDefaults(d.rooms, guests)
}

// MarkedRooms annotates the loaded rooms for the current guest count.
func (d *Draft) MarkedRooms() []capacity.MarkedRoom {
	guests, ok := ParseGuests(d.guests)
	if !ok {
		guests = 1
	}
	return capacity.Mark(d.rooms, guests, d.selection)
}

func (d *Draft) selectedRooms() []catalog.Room {
	return catalog.PickRooms(d.rooms, d.selection.IDs())
}
