// Package pricing computes charged prices for catalog products under
// time-windowed offers. It is the single place unit prices and line totals
// are calculated; cart display and order materialization both call into it
// so the number the buyer sees is the number the buyer is charged.
//
// All money values are int64 minor currency units (CLP, zero-decimal).
package pricing

import (
	"time"

	"github.com/feriaverde/marketplace/internal/domain"
)

// LinePricing is the verdict for one (product, quantity) pair.
type LinePricing struct {
	// UnitPrice is the charged price per billable unit, never below 1.
	UnitPrice int64

	// BillableQuantity is the number of units actually charged. Equals the
	// requested quantity except under two-for-one, where every second unit
	// is free.
	BillableQuantity int32

	// LineTotal is UnitPrice * BillableQuantity.
	LineTotal int64

	// OriginalPrice is the product's list price at pricing time.
	OriginalPrice int64

	// DiscountPercentage is the percentage applied: the offer's percentage,
	// 50 for two-for-one (reporting convention), 0 otherwise.
	DiscountPercentage int32

	// OfferKind is the kind of the effective offer, empty when none applied.
	OfferKind domain.OfferKind
}

// ResolveOffer decides which discount, if any, applies to the product at
// the given instant. It returns nil when the product has no offer, the
// offer is inactive or outside its validity window, or the offer row is
// malformed. A nil result means list price; the resolver never yields a
// discount that would produce a zero or negative charge.
//
// The verdict is recomputed on every call. Neither input is mutated.
func ResolveOffer(product *domain.Product, now time.Time) *domain.EffectiveOffer {
	if product == nil || product.Offer == nil {
		return nil
	}

	offer := product.Offer
	if !offer.IsActive {
		return nil
	}
	if !offer.StartsAt.Before(offer.EndsAt) {
		return nil
	}
	if now.Before(offer.StartsAt) || now.After(offer.EndsAt) {
		return nil
	}

	switch offer.Kind {
	case domain.OfferFixedPrice:
		if offer.FixedPrice <= 0 || offer.FixedPrice >= product.ListPrice {
			return nil
		}
		return &domain.EffectiveOffer{
			OfferID:    offer.ID,
			Kind:       domain.OfferFixedPrice,
			FixedPrice: offer.FixedPrice,
		}
	case domain.OfferPercentage:
		if offer.DiscountPercentage < 1 || offer.DiscountPercentage > 90 {
			return nil
		}
		return &domain.EffectiveOffer{
			OfferID:    offer.ID,
			Kind:       domain.OfferPercentage,
			Percentage: offer.DiscountPercentage,
		}
	case domain.OfferTwoForOne:
		return &domain.EffectiveOffer{
			OfferID: offer.ID,
			Kind:    domain.OfferTwoForOne,
		}
	}

	return nil
}

// PriceLine prices a quantity of a product under an already-resolved offer.
// Unit price resolution, first match wins: no offer takes the list price,
// fixed price charges max(1, fixed), percentage charges
// max(1, floor(list*(100-pct)/100)), two-for-one charges the list price for
// ceil(quantity/2) units.
//
// The floor of 1 is load-bearing: the payment gateway rejects zero-price
// line items.
func PriceLine(product *domain.Product, quantity int32, offer *domain.EffectiveOffer) (LinePricing, error) {
	const op = "pricing.PriceLine"

	if product == nil {
		return LinePricing{}, domain.Invalid(op, "product is required")
	}
	if quantity <= 0 {
		return LinePricing{}, domain.WrapError(domain.ErrInvalidQuantity, domain.EINVALID, op, "quantity must be positive")
	}

	lp := LinePricing{
		UnitPrice:        product.ListPrice,
		BillableQuantity: quantity,
		OriginalPrice:    product.ListPrice,
	}

	if offer != nil {
		switch offer.Kind {
		case domain.OfferFixedPrice:
			lp.UnitPrice = clampPrice(offer.FixedPrice)
			lp.OfferKind = domain.OfferFixedPrice
		case domain.OfferPercentage:
			lp.UnitPrice = clampPrice(product.ListPrice * int64(100-offer.Percentage) / 100)
			lp.DiscountPercentage = offer.Percentage
			lp.OfferKind = domain.OfferPercentage
		case domain.OfferTwoForOne:
			lp.BillableQuantity = quantity/2 + quantity%2
			lp.DiscountPercentage = 50
			lp.OfferKind = domain.OfferTwoForOne
		}
	}

	lp.LineTotal = lp.UnitPrice * int64(lp.BillableQuantity)
	return lp, nil
}

// PriceProduct resolves and prices in one step. This is the entry point the
// cart projector and the order materializer share.
func PriceProduct(product *domain.Product, quantity int32, now time.Time) (LinePricing, error) {
	return PriceLine(product, quantity, ResolveOffer(product, now))
}

func clampPrice(p int64) int64 {
	if p < 1 {
		return 1
	}
	return p
}
