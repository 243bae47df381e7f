// Package catalog adapts the remote catalog service to policies.Catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"tourbook/internal/app/policies"
	domaincatalog "tourbook/internal/domain/catalog"
)

var (
	ErrNotConfigured = errors.New("catalog: http client not configured")
	ErrUnavailable   = errors.New("catalog: service unavailable")
)

// HTTPClient reads the catalog over its JSON API. Timeouts are owned by
// Client; the client does no retries.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

func (c *HTTPClient) Package(ctx context.Context, id domaincatalog.PackageID) (domaincatalog.Package, error) {
	var pkg domaincatalog.Package
	err := c.get(ctx, domaincatalog.ErrPackageNotFound, &pkg, "packages", string(id))
	return pkg, err
}

func (c *HTTPClient) PackageGuides(ctx context.Context, id domaincatalog.PackageID) ([]domaincatalog.Guide, error) {
	var guides []domaincatalog.Guide
	err := c.get(ctx, domaincatalog.ErrPackageNotFound, &guides, "packages", string(id), "guides")
	return guides, err
}

func (c *HTTPClient) PackageHotels(ctx context.Context, id domaincatalog.PackageID) ([]domaincatalog.Hotel, error) {
	var hotels []domaincatalog.Hotel
	err := c.get(ctx, domaincatalog.ErrPackageNotFound, &hotels, "packages", string(id), "hotels")
	return hotels, err
}

func (c *HTTPClient) Hotel(ctx context.Context, id domaincatalog.HotelID) (domaincatalog.Hotel, error) {
	var hotel domaincatalog.Hotel
	err := c.get(ctx, domaincatalog.ErrHotelNotFound, &hotel, "hotels", string(id))
	return hotel, err
}

func (c *HTTPClient) RoomsForHotel(ctx context.Context, id domaincatalog.HotelID) ([]domaincatalog.Room, error) {
	var rooms []domaincatalog.Room
	err := c.get(ctx, domaincatalog.ErrHotelNotFound, &rooms, "hotels", string(id), "rooms")
	return rooms, err
}

func (c *HTTPClient) RoomsForPackageHotel(ctx context.Context, pkg domaincatalog.PackageID, hotel domaincatalog.HotelID) ([]domaincatalog.Room, error) {
	var rooms []domaincatalog.Room
	err := c.get(ctx, domaincatalog.ErrHotelNotFound, &rooms, "packages", string(pkg), "hotels", string(hotel), "rooms")
	return rooms, err
}

// Offer returns nil without error when the catalog does not know the offer.
func (c *HTTPClient) Offer(ctx context.Context, id domaincatalog.OfferID) (*domaincatalog.Offer, error) {
	var offer domaincatalog.Offer
	errMissing := errors.New("offer missing")
	err := c.get(ctx, errMissing, &offer, "offers", string(id))
	if errors.Is(err, errMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (c *HTTPClient) get(ctx context.Context, notFound error, out any, segments ...string) error {
	if c == nil || c.Client == nil || c.BaseURL == "" {
		return ErrNotConfigured
	}
	endpoint := c.endpoint(segments...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			err = fmt.Errorf("%w: timeout (%s)", ErrUnavailable, endpoint)
		} else {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		c.logError("catalog request failed", endpoint, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return notFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
		c.logError("catalog returned error", endpoint, err)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logError("catalog decode failed", endpoint, err)
		return fmt.Errorf("catalog: decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *HTTPClient) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.Join(escaped, "/")
}

func (c *HTTPClient) logError(msg, endpoint string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "endpoint", endpoint, "error", err)
}

var _ policies.Catalog = (*HTTPClient)(nil)
