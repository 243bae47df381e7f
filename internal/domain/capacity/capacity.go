// Package capacity checks rooms against a guest count. Capacity is advisory:
// nothing here blocks a selection.
package capacity

import "tourbook/internal/domain/catalog"

// Eligible reports whether room alone can host guests.
func Eligible(room catalog.Room, guests int) bool {
	return room.MaxGuests >= guests
}

// TotalCapacity sums max guests over rooms. Display only.
func TotalCapacity(rooms []catalog.Room) int {
	total := 0
	for _, r := range rooms {
		total += r.MaxGuests
	}
	return total
}

// MarkedRoom is a room annotated for display.
type MarkedRoom struct {
	catalog.Room
	Eligible bool `json:"eligible"`
	Selected bool `json:"selected"`
}

// Selection is an ordered set of selected room ids.
type Selection struct {
	ids []catalog.RoomID
}

func NewSelection(ids ...catalog.RoomID) Selection {
	var s Selection
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *Selection) Has(id catalog.RoomID) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *Selection) Add(id catalog.RoomID) {
	if id == "" || s.Has(id) {
		return
	}
	s.ids = append(s.ids, id)
}

func (s *Selection) Remove(id catalog.RoomID) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Toggle flips membership of id and returns the new state. Eligibility is
// deliberately not consulted.
func (s *Selection) Toggle(id catalog.RoomID) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

func (s *Selection) Clear() {
	s.ids = nil
}

func (s Selection) Len() int {
	return len(s.ids)
}

func (s Selection) IDs() []catalog.RoomID {
	return append([]catalog.RoomID(nil), s.ids...)
}

// SelectDefaults replaces the selection with every eligible room. Ineligible
// rooms are left out of bulk defaults but can still be toggled in later.
func (s *Selection) SelectDefaults(rooms []catalog.Room, guests int) {
	s.Clear()
	for _, r := range rooms {
		if Eligible(r, guests) {
			s.Add(r.ID)
		}
	}
}

// Retain drops ids that are not present in rooms.
func (s *Selection) Retain(rooms []catalog.Room) {
	kept := s.ids[:0]
	for _, id := range s.ids {
		for _, r := range rooms {
			if r.ID == id {
				kept = append(kept, id)
				break
			}
		}
	}
	s.ids = kept
}

// Mark annotates rooms with eligibility for guests and current selection.
func Mark(rooms []catalog.Room, guests int, sel Selection) []MarkedRoom {
	out := make([]MarkedRoom, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, MarkedRoom{
			Room:     r,
			Eligible: Eligible(r, guests),
			Selected: sel.Has(r.ID),
		})
	}
	return out
}
