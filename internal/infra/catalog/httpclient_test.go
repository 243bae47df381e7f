package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincatalog "tourbook/internal/domain/catalog"
	"tourbook/internal/domain/shared/money"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/packages/pkg-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"pkg-1","name":"Coast","price":1000.5,"duration_days":3,"meals":{"breakfast":true}}`))
	})
	mux.HandleFunc("/packages/pkg-1/guides", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"g-1","rate_per_day":"250","is_primary":true}]`))
	})
	mux.HandleFunc("/hotels/h-1/rooms", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"r-1","hotel_id":"h-1","price_per_night":120,"max_guests":2,"room_type":"double"}]`))
	})
	mux.HandleFunc("/offers/off-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"off-1","discount_type":"percentage","discount_value":"10","package_ids":["pkg-1"]}`))
	})
	mux.HandleFunc("/hotels/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_Reads(t *testing.T) {
	srv := newCatalogServer(t)
	c := &HTTPClient{BaseURL: srv.URL + "/", Client: &http.Client{Timeout: time.Second}}
	ctx := context.Background()

	pkg, err := c.Package(ctx, "pkg-1")
	require.NoError(t, err)
	assert.True(t, money.Must("1000.5").Equal(pkg.Price))
	assert.True(t, pkg.Meals.Breakfast)

	guides, err := c.PackageGuides(ctx, "pkg-1")
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.True(t, guides[0].IsPrimary)
	assert.True(t, money.FromInt(250).Equal(guides[0].RatePerDay))

	rooms, err := c.RoomsForHotel(ctx, "h-1")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "double", rooms[0].Type)

	offer, err := c.Offer(ctx, "off-1")
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, domaincatalog.DiscountPercentage, offer.Kind)
}

func TestHTTPClient_Errors(t *testing.T) {
	srv := newCatalogServer(t)
	c := &HTTPClient{BaseURL: srv.URL, Client: &http.Client{Timeout: time.Second}}
	ctx := context.Background()

	_, err := c.Package(ctx, "nope")
	assert.ErrorIs(t, err, domaincatalog.ErrPackageNotFound)

	_, err = c.Hotel(ctx, "nope")
	assert.ErrorIs(t, err, domaincatalog.ErrHotelNotFound)

	offer, err := c.Offer(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, offer)

	_, err = c.Hotel(ctx, "broken")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = (&HTTPClient{}).Package(ctx, "pkg-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
