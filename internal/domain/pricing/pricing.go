package pricing

import (
	"time"

	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/shared/money"
)

// Input is everything a quote depends on. All entity fields are optional.
type Input struct {
	Package *catalog.Package
	Offer   *catalog.Offer
	Rooms   []catalog.Room
	Guide   *catalog.Guide
	Nights  int
	// At is checked against the offer validity window; zero skips the check.
	At time.Time
}

type Breakdown struct {
	PackageOriginal money.Money `json:"package_original"`
	PackageFinal    money.Money `json:"package_final"`
	RoomsTotal      money.Money `json:"rooms_total"`
	GuideTotal      money.Money `json:"guide_total"`
	GrandTotal      money.Money `json:"grand_total"`
	Nights          int         `json:"nights"`
	PricingNights   int         `json:"pricing_nights"`
	DiscountApplied bool        `json:"discount_applied"`
}

// Discount is the amount the offer took off the package.
func (b Breakdown) Discount() money.Money {
	return b.PackageOriginal.Sub(b.PackageFinal)
}

// Price computes the itemized quote. The steps run in a fixed order and
// never fail: missing entities contribute zero.
//
// Nights below one are billed as one night for rooms and guide, while the
// package term does not depend on nights at all.
func Price(in Input) Breakdown {
	out := Breakdown{Nights: in.Nights}

	out.PackageOriginal = money.Zero
	if in.Package != nil {
		out.PackageOriginal = in.Package.Price
	}

	out.PackageFinal = out.PackageOriginal
	if in.Package != nil && in.Offer.AppliesTo(in.Package.ID, in.At) {
		out.PackageFinal = applyOffer(out.PackageOriginal, in.Offer)
		out.DiscountApplied = true
	}

	billed := in.Nights
	if billed < 1 {
		billed = 1
	}
	out.PricingNights = billed

	nightly := money.Zero
	for _, r := range in.Rooms {
		nightly = nightly.Add(r.PricePerNight)
	}
	out.RoomsTotal = nightly.Multiply(billed)

	out.GuideTotal = money.Zero
	if in.Guide != nil {
		out.GuideTotal = in.Guide.RatePerDay.Multiply(billed)
	}

	out.GrandTotal = out.PackageFinal.Add(out.RoomsTotal).Add(out.GuideTotal)
	return out
}

func applyOffer(original money.Money, offer *catalog.Offer) money.Money {
	switch offer.Kind {
	case catalog.DiscountPercentage:
		return original.LessPercent(offer.Value)
	case catalog.DiscountFlat:
		return original.Sub(money.New(offer.Value)).ClampZero()
	default:
		return original
	}
}
