// Package assignment reconciles package/guide assignments edited by an admin
// against what is currently persisted. The write API has no batch replace,
// so a save turns into a sequence of single upserts and removals.
package assignment

import (
	"errors"

	"tourbook/internal/domain/catalog"
)

var (
	ErrEmptyKey     = errors.New("assignment: package and guide ids required")
	ErrScopeMissing = errors.New("assignment: scope id required")
)

// Key identifies the (package, guide) edge.
type Key struct {
	PackageID catalog.PackageID `json:"package_id"`
	GuideID   catalog.GuideID   `json:"guide_id"`
}

func (k Key) valid() bool {
	return k.PackageID != "" && k.GuideID != ""
}

type Assignment struct {
	Key
	IsPrimary bool `json:"is_primary"`
}

// DesiredSet is the edited assignment list. It keeps insertion order and
// holds at most one primary entry per package: marking an entry primary
// clears the flag on every other entry of the same package.
type DesiredSet struct {
	entries []Assignment
}

// ForPackage builds a desired set from the guide list of one package.
func ForPackage(packageID catalog.PackageID, guides []catalog.Guide) (DesiredSet, error) {
	var ds DesiredSet
	if packageID == "" {
		return ds, ErrScopeMissing
	}
	for _, g := range guides {
		if err := ds.Put(Key{PackageID: packageID, GuideID: g.ID}, g.IsPrimary); err != nil {
			return DesiredSet{}, err
		}
	}
	return ds, nil
}

// PackageLink is one row of a guide's package list in the admin editor.
type PackageLink struct {
	PackageID catalog.PackageID `json:"package_id"`
	IsPrimary bool              `json:"is_primary"`
}

// ForGuide builds a desired set from the package list of one guide.
func ForGuide(guideID catalog.GuideID, links []PackageLink) (DesiredSet, error) {
	var ds DesiredSet
	if guideID == "" {
		return ds, ErrScopeMissing
	}
	for _, l := range links {
		if err := ds.Put(Key{PackageID: l.PackageID, GuideID: guideID}, l.IsPrimary); err != nil {
			return DesiredSet{}, err
		}
	}
	return ds, nil
}

// DemotePeers covers the primaries s cannot see: edges of other guides that
// are persisted as primary on a package where s sets a different primary.
// stored holds the persisted edges of those packages. Each competing edge is
// added unflagged ahead of the existing entries, so the old primary is
// cleared before the new one is written.
func (s *DesiredSet) DemotePeers(stored []Assignment) {
	var demoted []Assignment
	seen := make(map[Key]struct{})
	for _, e := range stored {
		if !e.IsPrimary || s.Has(e.Key) {
			continue
		}
		if _, dup := seen[e.Key]; dup {
			continue
		}
		if g, ok := s.Primary(e.PackageID); !ok || g == e.GuideID {
			continue
		}
		seen[e.Key] = struct{}{}
		demoted = append(demoted, Assignment{Key: e.Key})
	}
	if len(demoted) > 0 {
		s.entries = append(demoted, s.entries...)
	}
}

// Put adds or updates an entry. A primary entry demotes any other primary
// of the same package.
func (s *DesiredSet) Put(key Key, primary bool) error {
	if !key.valid() {
		return ErrEmptyKey
	}
	if primary {
		s.clearPrimary(key.PackageID)
	}
	for i := range s.entries {
		if s.entries[i].Key == key {
			s.entries[i].IsPrimary = primary
			return nil
		}
	}
	s.entries = append(s.entries, Assignment{Key: key, IsPrimary: primary})
	return nil
}

// SetPrimary marks key as the primary of its package, adding it if needed.
func (s *DesiredSet) SetPrimary(key Key) error {
	return s.Put(key, true)
}

func (s *DesiredSet) Remove(key Key) {
	for i := range s.entries {
		if s.entries[i].Key == key {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *DesiredSet) clearPrimary(packageID catalog.PackageID) {
	for i := range s.entries {
		if s.entries[i].PackageID == packageID {
			s.entries[i].IsPrimary = false
		}
	}
}

func (s DesiredSet) Has(key Key) bool {
	for _, e := range s.entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

func (s DesiredSet) Entries() []Assignment {
	return append([]Assignment(nil), s.entries...)
}

func (s DesiredSet) Len() int {
	return len(s.entries)
}

// Primary returns the primary guide of packageID, if any.
func (s DesiredSet) Primary(packageID catalog.PackageID) (catalog.GuideID, bool) {
	for _, e := range s.entries {
		if e.PackageID == packageID && e.IsPrimary {
			return e.GuideID, true
		}
	}
	return "", false
}

// Scope selects the persisted edges one editor works on: every guide of a
// package, or every package of a guide.
type Scope struct {
	PackageID catalog.PackageID
	GuideID   catalog.GuideID
}

func PackageScope(id catalog.PackageID) Scope { return Scope{PackageID: id} }
func GuideScope(id catalog.GuideID) Scope     { return Scope{GuideID: id} }

// Valid is true when exactly one side is set.
func (s Scope) Valid() bool {
	return (s.PackageID == "") != (s.GuideID == "")
}

func (s Scope) Matches(k Key) bool {
	if s.PackageID != "" {
		return k.PackageID == s.PackageID
	}
	return s.GuideID != "" && k.GuideID == s.GuideID
}
