package booking

import (
	"context"
	"errors"
	"time"

	"tourbook/internal/app/dto"
	"tourbook/internal/app/policies"
	"tourbook/internal/app/queries"
	"tourbook/internal/domain/catalog"
)

const getPackageContextKey = "booking.package_context"

var ErrPackageIDMissing = errors.New("booking: package id required")

// GetPackageContextQuery loads what the package booking page needs up front:
// the package, its guides, its hotels and, when given, the offer.
type GetPackageContextQuery struct {
	PackageID string
	OfferID   string
}

func (q GetPackageContextQuery) Key() string { return getPackageContextKey }

func (q GetPackageContextQuery) Validate() error {
	if q.PackageID == "" {
		return ErrPackageIDMissing
	}
	return nil
}

type GetPackageContextHandler struct {
	Catalog policies.Catalog
	Now     func() time.Time
}

func (h *GetPackageContextHandler) Handle(ctx context.Context, q GetPackageContextQuery) (dto.PackageContext, error) {
	b, err := loadPackage(ctx, h.Catalog, catalog.PackageID(q.PackageID), catalog.OfferID(q.OfferID), true)
	if err != nil {
		return dto.PackageContext{}, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	return dto.MapPackageContext(b.pkg, b.guides, b.hotels, b.offer, b.offer.AppliesTo(b.pkg.ID, now)), nil
}

var _ queries.Handler[GetPackageContextQuery, dto.PackageContext] = (*GetPackageContextHandler)(nil)
