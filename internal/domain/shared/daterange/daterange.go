package daterange

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

const day = 24 * time.Hour

// DayLayout is the calendar-date wire format used by the booking UI.
const DayLayout = "2006-01-02"

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// IsZero reports whether neither bound is set.
func (dr DateRange) IsZero() bool {
	return dr.CheckIn.IsZero() && dr.CheckOut.IsZero()
}

// Complete reports whether both bounds are set. Order is not checked.
func (dr DateRange) Complete() bool {
	return !dr.CheckIn.IsZero() && !dr.CheckOut.IsZero()
}

// Nights rounds the span to whole days and never goes below zero.
func (dr DateRange) Nights() int {
	if !dr.Complete() {
		return 0
	}
	n := int(math.Round(float64(dr.CheckOut.Sub(dr.CheckIn)) / float64(day)))
	if n < 0 {
		return 0
	}
	return n
}

func (dr DateRange) Contains(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ParseDay reads a calendar date or an RFC 3339 timestamp. Blank or malformed
// input yields ok=false; callers treat that as "date absent".
func ParseDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DayLayout, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// Parse builds a range from two wire strings. Unparseable bounds stay zero.
func Parse(checkIn, checkOut string) DateRange {
	in, _ := ParseDay(checkIn)
	out, _ := ParseDay(checkOut)
	return DateRange{CheckIn: in, CheckOut: out}
}

// Nights derives a stay length from explicit dates, falling back to a fixed
// duration in days when either date is missing or unparseable.
func Nights(checkIn, checkOut string, fallbackDays *int) int {
	in, okIn := ParseDay(checkIn)
	out, okOut := ParseDay(checkOut)
	if okIn && okOut {
		return DateRange{CheckIn: in, CheckOut: out}.Nights()
	}
	if fallbackDays != nil {
		return *fallbackDays
	}
	return 0
}

// FormatDay renders t in DayLayout, or "" for the zero time.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DayLayout)
}
