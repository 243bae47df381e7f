package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourbook/internal/app/policies/mocks"
	domainbooking "tourbook/internal/domain/booking"
	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/shared/money"
)

func TestGetPackageContext(t *testing.T) {
	cat := new(mocks.MockCatalog)
	cat.On("Package", mock.Anything, catalog.PackageID("pkg-1")).Return(tourPackage(), nil)
	cat.On("PackageGuides", mock.Anything, catalog.PackageID("pkg-1")).Return(tourGuides(), nil)
	cat.On("PackageHotels", mock.Anything, catalog.PackageID("pkg-1")).Return([]catalog.Hotel{seaHotel()}, nil)
	expired := tenPercent()
	expired.ValidUntil = fixedNow.Add(-time.Hour)
	cat.On("Offer", mock.Anything, catalog.OfferID("off-1")).Return(expired, nil)

	h := &GetPackageContextHandler{Catalog: cat, Now: func() time.Time { return fixedNow }}
	out, err := h.Handle(context.Background(), GetPackageContextQuery{PackageID: "pkg-1", OfferID: "off-1"})
	require.NoError(t, err)

	assert.True(t, out.Bookable)
	assert.Equal(t, "g-1", out.PrimaryGuideID)
	assert.Len(t, out.Hotels, 1)
	require.NotNil(t, out.Offer)
	assert.False(t, out.OfferApplies)
	cat.AssertExpectations(t)
}

func TestGetPackageContext_NoGuidesNotBookable(t *testing.T) {
	cat := new(mocks.MockCatalog)
	cat.On("Package", mock.Anything, catalog.PackageID("pkg-1")).Return(tourPackage(), nil)
	cat.On("PackageGuides", mock.Anything, catalog.PackageID("pkg-1")).Return(nil, nil)
	cat.On("PackageHotels", mock.Anything, catalog.PackageID("pkg-1")).Return(nil, nil)

	h := &GetPackageContextHandler{Catalog: cat}
	out, err := h.Handle(context.Background(), GetPackageContextQuery{PackageID: "pkg-1"})
	require.NoError(t, err)

	assert.False(t, out.Bookable)
	assert.NotNil(t, out.Guides)
	assert.Empty(t, out.Guides)
	assert.Nil(t, out.Offer)
	cat.AssertNotCalled(t, "Offer", mock.Anything, mock.Anything)
}

func TestGetHotelRooms(t *testing.T) {
	cat := new(mocks.MockCatalog)
	cat.On("RoomsForHotel", mock.Anything, catalog.HotelID("h-1")).Return(seaRooms(), nil)
	cat.On("RoomsForPackageHotel", mock.Anything, catalog.PackageID("pkg-1"), catalog.HotelID("h-1")).
		Return([]catalog.Room{seaRooms()[0]}, nil)

	h := &GetHotelRoomsHandler{Catalog: cat}
	out, err := h.Handle(context.Background(), GetHotelRoomsQuery{
		HotelID:   "h-1",
		PackageID: "pkg-1",
		Guests:    "2",
		Selected:  []string{"r-2", "r-missing"},
	})
	require.NoError(t, err)

	require.Len(t, out.Rooms, 2)
	assert.True(t, out.Rooms[0].Eligible)
	assert.False(t, out.Rooms[0].Selected)
	assert.False(t, out.Rooms[1].Eligible)
	assert.True(t, out.Rooms[1].Selected, "ineligible rooms stay selectable")
	assert.Equal(t, 3, out.TotalCapacity)
	assert.Len(t, out.PackageRooms, 1)
}

func TestGetHotelRooms_InvalidGuests(t *testing.T) {
	h := &GetHotelRoomsHandler{Catalog: new(mocks.MockCatalog)}
	_, err := h.Handle(context.Background(), GetHotelRoomsQuery{HotelID: "h-1", Guests: "two"})

	rej, ok := domainbooking.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, domainbooking.ReasonInvalidGuests, rej.Reason)
}

func TestQuotePrice(t *testing.T) {
	tests := []struct {
		name  string
		query QuotePriceQuery
		total int64
	}{
		{
			name: "package with hotel and offer",
			query: QuotePriceQuery{
				PackageID: "pkg-1", OfferID: "off-1", GuideID: "g-1",
				HotelID: "h-1", RoomIDs: []string{"r-1", "r-2"},
				CheckIn: "2025-06-01", CheckOut: "2025-06-03",
			},
			total: 2900,
		},
		{
			name:  "package only falls back to duration",
			query: QuotePriceQuery{PackageID: "pkg-1", GuideID: "g-2"},
			total: 1900,
		},
		{
			name:  "same day stay bills one night",
			query: QuotePriceQuery{HotelID: "h-1", RoomIDs: []string{"r-1"}, CheckIn: "2025-06-01", CheckOut: "2025-06-01"},
			total: 200,
		},
		{
			name:  "nothing selected",
			query: QuotePriceQuery{},
			total: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := new(mocks.MockCatalog)
			cat.On("Package", mock.Anything, catalog.PackageID("pkg-1")).Return(tourPackage(), nil).Maybe()
			cat.On("PackageGuides", mock.Anything, catalog.PackageID("pkg-1")).Return(tourGuides(), nil).Maybe()
			cat.On("Offer", mock.Anything, catalog.OfferID("off-1")).Return(tenPercent(), nil).Maybe()
			cat.On("RoomsForHotel", mock.Anything, catalog.HotelID("h-1")).Return(seaRooms(), nil).Maybe()

			h := &QuotePriceHandler{Catalog: cat, Now: func() time.Time { return fixedNow }}
			out, err := h.Handle(context.Background(), tt.query)
			require.NoError(t, err)
			assert.True(t, money.FromInt(tt.total).Equal(out.GrandTotal), "got %s", out.GrandTotal.String())
		})
	}
}
