package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"tourbook/internal/app/policies"
	"tourbook/internal/domain/assignment"
	"tourbook/internal/domain/catalog"
)

// CatalogFixture is the on-disk shape of a demo catalog.
type CatalogFixture struct {
	Packages      []catalog.Package     `json:"packages"`
	Guides        []catalog.Guide       `json:"guides"`
	PackageGuides []packageGuideFixture `json:"package_guides"`
	Hotels        []catalog.Hotel       `json:"hotels"`
	PackageHotels []packageHotelFixture `json:"package_hotels"`
	Rooms         []catalog.Room        `json:"rooms"`
	Offers        []catalog.Offer       `json:"offers"`
}

type packageGuideFixture struct {
	PackageID catalog.PackageID `json:"package_id"`
	GuideID   catalog.GuideID   `json:"guide_id"`
	IsPrimary bool              `json:"is_primary"`
}

type packageHotelFixture struct {
	PackageID catalog.PackageID `json:"package_id"`
	HotelID   catalog.HotelID   `json:"hotel_id"`
	RoomIDs   []catalog.RoomID  `json:"room_ids"`
}

type packageHotelKey struct {
	pkg   catalog.PackageID
	hotel catalog.HotelID
}

// GuideEdges is where the catalog reads package guides from. Both the memory
// and the Mongo assignment stores satisfy it.
type GuideEdges interface {
	assignment.Writer
	ForPackage(ctx context.Context, id catalog.PackageID) ([]assignment.Assignment, error)
}

// Catalog serves catalog reads from memory. Package guides are read from the
// assignment store so saved assignments show up in booking flows.
type Catalog struct {
	mu            sync.RWMutex
	packages      map[catalog.PackageID]catalog.Package
	guides        map[catalog.GuideID]catalog.Guide
	hotels        map[catalog.HotelID]catalog.Hotel
	packageHotels map[catalog.PackageID][]catalog.HotelID
	packageRooms  map[packageHotelKey][]catalog.RoomID
	rooms         map[catalog.HotelID][]catalog.Room
	offers        map[catalog.OfferID]catalog.Offer

	assignments GuideEdges
}

func NewCatalog(assignments GuideEdges) *Catalog {
	if assignments == nil {
		assignments = NewAssignmentStore()
	}
	return &Catalog{
		packages:      make(map[catalog.PackageID]catalog.Package),
		guides:        make(map[catalog.GuideID]catalog.Guide),
		hotels:        make(map[catalog.HotelID]catalog.Hotel),
		packageHotels: make(map[catalog.PackageID][]catalog.HotelID),
		packageRooms:  make(map[packageHotelKey][]catalog.RoomID),
		rooms:         make(map[catalog.HotelID][]catalog.Room),
		offers:        make(map[catalog.OfferID]catalog.Offer),
		assignments:   assignments,
	}
}

// LoadFile reads a JSON fixture from path.
func (c *Catalog) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fx CatalogFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode catalog fixture: %w", err)
	}
	return c.Load(ctx, fx)
}

// Load merges fx into the catalog and seeds package guides as assignments.
func (c *Catalog) Load(ctx context.Context, fx CatalogFixture) error {
	c.mu.Lock()
	for _, p := range fx.Packages {
		c.packages[p.ID] = p
	}
	for _, g := range fx.Guides {
		g.IsPrimary = false
		c.guides[g.ID] = g
	}
	for _, h := range fx.Hotels {
		c.hotels[h.ID] = h
	}
	for _, r := range fx.Rooms {
		c.rooms[r.HotelID] = append(c.rooms[r.HotelID], r)
	}
	for _, ph := range fx.PackageHotels {
		c.packageHotels[ph.PackageID] = append(c.packageHotels[ph.PackageID], ph.HotelID)
		key := packageHotelKey{pkg: ph.PackageID, hotel: ph.HotelID}
		c.packageRooms[key] = append(c.packageRooms[key], ph.RoomIDs...)
	}
	for _, o := range fx.Offers {
		c.offers[o.ID] = o
	}
	c.mu.Unlock()

	for _, pg := range fx.PackageGuides {
		edge := assignment.Assignment{Key: assignment.Key{PackageID: pg.PackageID, GuideID: pg.GuideID}, IsPrimary: pg.IsPrimary}
		if err := c.assignments.Upsert(ctx, edge); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) Package(ctx context.Context, id catalog.PackageID) (catalog.Package, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.packages[id]
	if !ok {
		return catalog.Package{}, catalog.ErrPackageNotFound
	}
	return p, nil
}

// PackageGuides lists the guides assigned to id in assignment order. Edges
// pointing at unknown guides are skipped.
func (c *Catalog) PackageGuides(ctx context.Context, id catalog.PackageID) ([]catalog.Guide, error) {
	if _, err := c.Package(ctx, id); err != nil {
		return nil, err
	}
	edges, err := c.assignments.ForPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]catalog.Guide, 0, len(edges))
	for _, e := range edges {
		g, ok := c.guides[e.GuideID]
		if !ok {
			continue
		}
		g.IsPrimary = e.IsPrimary
		out = append(out, g)
	}
	return out, nil
}

func (c *Catalog) PackageHotels(ctx context.Context, id catalog.PackageID) ([]catalog.Hotel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.packages[id]; !ok {
		return nil, catalog.ErrPackageNotFound
	}
	ids := c.packageHotels[id]
	out := make([]catalog.Hotel, 0, len(ids))
	for _, hid := range ids {
		if h, ok := c.hotels[hid]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (c *Catalog) Hotel(ctx context.Context, id catalog.HotelID) (catalog.Hotel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hotels[id]
	if !ok {
		return catalog.Hotel{}, catalog.ErrHotelNotFound
	}
	return h, nil
}

func (c *Catalog) RoomsForHotel(ctx context.Context, id catalog.HotelID) ([]catalog.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.hotels[id]; !ok {
		return nil, catalog.ErrHotelNotFound
	}
	return append([]catalog.Room(nil), c.rooms[id]...), nil
}

func (c *Catalog) RoomsForPackageHotel(ctx context.Context, pkg catalog.PackageID, hotel catalog.HotelID) ([]catalog.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.hotels[hotel]; !ok {
		return nil, catalog.ErrHotelNotFound
	}
	return catalog.PickRooms(c.rooms[hotel], c.packageRooms[packageHotelKey{pkg: pkg, hotel: hotel}]), nil
}

func (c *Catalog) Offer(ctx context.Context, id catalog.OfferID) (*catalog.Offer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.offers[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

var _ policies.Catalog = (*Catalog)(nil)
