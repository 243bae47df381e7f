package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/domain/shared/money"
)

func TestOfferAppliesTo(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	offer := &Offer{
		ID:         "spring",
		Kind:       DiscountPercentage,
		Value:      decimal.NewFromInt(10),
		ValidFrom:  now.Add(-24 * time.Hour),
		ValidUntil: now.Add(24 * time.Hour),
		PackageIDs: []PackageID{"p1", "p2"},
	}

	assert.True(t, offer.AppliesTo("p1", now))
	assert.False(t, offer.AppliesTo("p3", now))
	assert.False(t, offer.AppliesTo("p1", now.Add(48*time.Hour)))
	assert.False(t, offer.AppliesTo("p1", now.Add(-48*time.Hour)))
	assert.True(t, offer.AppliesTo("p1", time.Time{}))
	assert.False(t, offer.AppliesTo("", now))

	var missing *Offer
	assert.False(t, missing.AppliesTo("p1", now))

	open := &Offer{Kind: DiscountFlat, Value: decimal.NewFromInt(5)}
	assert.True(t, open.AppliesTo("anything", now))

	bogus := &Offer{Kind: "bogo"}
	assert.False(t, bogus.AppliesTo("p1", now))
}

func TestParseDiscountKind(t *testing.T) {
	kind, err := ParseDiscountKind(" Percentage ")
	require.NoError(t, err)
	assert.Equal(t, DiscountPercentage, kind)

	kind, err = ParseDiscountKind("fixed")
	require.NoError(t, err)
	assert.Equal(t, DiscountFlat, kind)

	_, err = ParseDiscountKind("free")
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestPackageDuration(t *testing.T) {
	var nilPkg *Package
	assert.Nil(t, nilPkg.Duration())
	assert.Nil(t, (&Package{}).Duration())

	d := (&Package{DurationDays: 4}).Duration()
	require.NotNil(t, d)
	assert.Equal(t, 4, *d)
}

func TestPickRoomsKeepsCatalogOrder(t *testing.T) {
	rooms := []Room{
		{ID: "r1", PricePerNight: money.FromInt(100)},
		{ID: "r2", PricePerNight: money.FromInt(200)},
		{ID: "r3", PricePerNight: money.FromInt(300)},
	}
	picked := PickRooms(rooms, []RoomID{"r3", "r1", "missing"})
	require.Len(t, picked, 2)
	assert.Equal(t, RoomID("r1"), picked[0].ID)
	assert.Equal(t, RoomID("r3"), picked[1].ID)
	assert.Nil(t, PickRooms(rooms, nil))
}

func TestFindGuide(t *testing.T) {
	guides := []Guide{{ID: "g1"}, {ID: "g2", IsPrimary: true}}
	g := FindGuide(guides, "g2")
	require.NotNil(t, g)
	assert.True(t, g.IsPrimary)
	assert.Nil(t, FindGuide(guides, "g9"))
}

func TestDiscountKindJSON(t *testing.T) {
	var offer Offer
	require.NoError(t, json.Unmarshal([]byte(`{"id":"o","discount_type":"Fixed","discount_value":25}`), &offer))
	assert.Equal(t, DiscountFlat, offer.Kind)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"o","discount_type":"bogo","discount_value":1}`), &offer))
	assert.False(t, offer.AppliesTo("p", time.Time{}))
}
