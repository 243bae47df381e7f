package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/app/middleware"
	appoutbox "tourbook/internal/app/outbox"
	"tourbook/internal/domain/assignment"
	domainbooking "tourbook/internal/domain/booking"
	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/shared/money"
)

func demoFixture() CatalogFixture {
	return CatalogFixture{
		Packages: []catalog.Package{{ID: "p1", Name: "Alps", Price: money.FromInt(1000)}},
		Guides: []catalog.Guide{
			{ID: "g1", Name: "Ana", RatePerDay: money.FromInt(100)},
			{ID: "g2", Name: "Bo", RatePerDay: money.FromInt(120)},
		},
		PackageGuides: []packageGuideFixture{
			{PackageID: "p1", GuideID: "g1", IsPrimary: true},
			{PackageID: "p1", GuideID: "g-missing"},
		},
		Hotels: []catalog.Hotel{{ID: "h1", Name: "Lodge"}},
		PackageHotels: []packageHotelFixture{
			{PackageID: "p1", HotelID: "h1", RoomIDs: []catalog.RoomID{"r2"}},
		},
		Rooms: []catalog.Room{
			{ID: "r1", HotelID: "h1", PricePerNight: money.FromInt(80), MaxGuests: 2},
			{ID: "r2", HotelID: "h1", PricePerNight: money.FromInt(90), MaxGuests: 3},
		},
		Offers: []catalog.Offer{{ID: "o1", Kind: catalog.DiscountFlat}},
	}
}

func TestCatalogReads(t *testing.T) {
	ctx := context.Background()
	store := NewAssignmentStore()
	cat := NewCatalog(store)
	require.NoError(t, cat.Load(ctx, demoFixture()))

	guides, err := cat.PackageGuides(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, guides, 1, "edges to unknown guides are skipped")
	assert.True(t, guides[0].IsPrimary)

	hotels, err := cat.PackageHotels(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, hotels, 1)

	mapped, err := cat.RoomsForPackageHotel(ctx, "p1", "h1")
	require.NoError(t, err)
	require.Len(t, mapped, 1)
	assert.Equal(t, catalog.RoomID("r2"), mapped[0].ID)

	offer, err := cat.Offer(ctx, "o1")
	require.NoError(t, err)
	require.NotNil(t, offer)
	missing, err := cat.Offer(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = cat.Package(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrPackageNotFound)
	_, err = cat.RoomsForHotel(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrHotelNotFound)
}

func TestSavedAssignmentsShowInPackageGuides(t *testing.T) {
	ctx := context.Background()
	store := NewAssignmentStore()
	cat := NewCatalog(store)
	require.NoError(t, cat.Load(ctx, demoFixture()))

	desired, err := assignment.ForPackage("p1", []catalog.Guide{{ID: "g2", IsPrimary: true}})
	require.NoError(t, err)
	current, err := store.Current(ctx, assignment.PackageScope("p1"))
	require.NoError(t, err)
	assignment.Execute(ctx, store, assignment.Reconcile(current, desired), nil)

	guides, err := cat.PackageGuides(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, catalog.GuideID("g2"), guides[0].ID)
	assert.True(t, guides[0].IsPrimary)

	byGuide, err := store.Current(ctx, assignment.GuideScope("g2"))
	require.NoError(t, err)
	assert.Equal(t, []assignment.Key{{PackageID: "p1", GuideID: "g2"}}, byGuide)
}

func TestBookingStoreDeduplicatesByRequestID(t *testing.T) {
	ctx := context.Background()
	s := NewBookingStore()

	first, err := s.Create(ctx, domainbooking.Request{ID: "req-1"})
	require.NoError(t, err)
	second, err := s.Create(ctx, domainbooking.Request{ID: "req-1"})
	require.NoError(t, err)
	other, err := s.Create(ctx, domainbooking.Request{ID: "req-2"})
	require.NoError(t, err)

	assert.Equal(t, first.BookingID, second.BookingID)
	assert.NotEqual(t, first.BookingID, other.BookingID)
	stored, err := s.ByID(ctx, first.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)
}

func TestIdempotencyStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Minute)
	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "fresh", OccurredAt: time.Now()}))
	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "stale", OccurredAt: time.Now().Add(-time.Hour)}))

	_, found, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = s.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOutboxQueue(t *testing.T) {
	ctx := context.Background()
	box := NewOutbox()
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e1", Name: "booking.created"}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e2", Name: "booking.created"}))

	doc, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "e1", doc.ID)

	require.NoError(t, box.MarkFailed(ctx, "e1", time.Now().Add(time.Hour), "broker down"))
	next, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "e2", next.ID, "failed events wait for their retry time")

	require.NoError(t, box.MarkSent(ctx, "e2"))
	assert.Equal(t, 1, box.Pending())
	none, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	assert.Nil(t, none)
}
