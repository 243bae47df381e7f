// Package catalog holds the read-only entities the booking core consumes from
// the remote tour catalog.
package catalog

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tourbook/internal/domain/shared/money"
)

var (
	ErrPackageNotFound = errors.New("catalog: package not found")
	ErrHotelNotFound   = errors.New("catalog: hotel not found")
	ErrInvalidDiscount = errors.New("catalog: unknown discount kind")
)

type (
	PackageID     string
	OfferID       string
	HotelID       string
	RoomID        string
	GuideID       string
	DestinationID string
)

type Meals struct {
	Breakfast bool `json:"breakfast"`
	Lunch     bool `json:"lunch"`
	Dinner    bool `json:"dinner"`
}

// Package is a multi-day tour product with a base price.
type Package struct {
	ID           PackageID   `json:"id"`
	Name         string      `json:"name"`
	Price        money.Money `json:"price"`
	DurationDays int         `json:"duration_days"`
	StartDate    *time.Time  `json:"start_date,omitempty"`
	EndDate      *time.Time  `json:"end_date,omitempty"`
	Meals        Meals       `json:"meals"`
	Transport    string      `json:"transport,omitempty"`
}

// Duration returns the fixed duration as a fallback for night computation,
// or nil when the package does not declare one.
func (p *Package) Duration() *int {
	if p == nil || p.DurationDays <= 0 {
		return nil
	}
	d := p.DurationDays
	return &d
}

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFlat       DiscountKind = "flat"
)

func ParseDiscountKind(raw string) (DiscountKind, error) {
	switch DiscountKind(strings.ToLower(strings.TrimSpace(raw))) {
	case DiscountPercentage:
		return DiscountPercentage, nil
	case DiscountFlat, "fixed":
		return DiscountFlat, nil
	default:
		return "", ErrInvalidDiscount
	}
}

// UnmarshalJSON accepts the aliases ParseDiscountKind knows. Unknown kinds
// are kept as sent and never apply.
func (k *DiscountKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDiscountKind(raw)
	if err != nil {
		parsed = DiscountKind(raw)
	}
	*k = parsed
	return nil
}

// Offer is a promotional discount selected by the caller for one attempt.
type Offer struct {
	ID         OfferID         `json:"id"`
	Kind       DiscountKind    `json:"discount_type"`
	Value      decimal.Decimal `json:"discount_value"`
	ValidFrom  time.Time       `json:"valid_from"`
	ValidUntil time.Time       `json:"valid_until"`
	PackageIDs []PackageID     `json:"package_ids"`
}

// AppliesTo reports whether the offer can discount pkg at the given instant.
// An empty package list matches any package; a zero bound is open; a zero
// instant skips the window check.
func (o *Offer) AppliesTo(pkg PackageID, at time.Time) bool {
	if o == nil || pkg == "" {
		return false
	}
	if o.Kind != DiscountPercentage && o.Kind != DiscountFlat {
		return false
	}
	if len(o.PackageIDs) > 0 {
		found := false
		for _, id := range o.PackageIDs {
			if id == pkg {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if at.IsZero() {
		return true
	}
	if !o.ValidFrom.IsZero() && at.Before(o.ValidFrom) {
		return false
	}
	if !o.ValidUntil.IsZero() && at.After(o.ValidUntil) {
		return false
	}
	return true
}

type Hotel struct {
	ID            HotelID       `json:"id"`
	DestinationID DestinationID `json:"destination_id"`
	Name          string        `json:"name"`
	Address       string        `json:"address"`
}

// Room is a leaf resource; availability is authoritative at the catalog.
type Room struct {
	ID            RoomID      `json:"id"`
	HotelID       HotelID     `json:"hotel_id"`
	PricePerNight money.Money `json:"price_per_night"`
	MaxGuests     int         `json:"max_guests"`
	Type          string      `json:"room_type"`
}

// Guide carries IsPrimary only when fetched in the context of a package.
type Guide struct {
	ID         GuideID     `json:"id"`
	Name       string      `json:"name"`
	RatePerDay money.Money `json:"rate_per_day"`
	City       string      `json:"city"`
	Rating     float64     `json:"rating"`
	IsPrimary  bool        `json:"is_primary"`
}

// FindGuide returns the guide with id or nil.
func FindGuide(guides []Guide, id GuideID) *Guide {
	for i := range guides {
		if guides[i].ID == id {
			g := guides[i]
			return &g
		}
	}
	return nil
}

// PickRooms returns the rooms whose ids are in ids, keeping the order of rooms.
func PickRooms(rooms []Room, ids []RoomID) []Room {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[RoomID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]Room, 0, len(ids))
	for _, r := range rooms {
		if _, ok := want[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}
