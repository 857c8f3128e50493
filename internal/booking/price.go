package booking

import (
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// bonusDivisorCents converts a total into loyalty points on
// completion: one point per ten currency units, floored.
const bonusDivisorCents = 1000

// resolveOffers maps the requested offer ids onto the offers that are
// active and eligible for the room.  Unknown, inactive or foreign ids
// are rejected rather than silently dropped so that a client bug
// cannot produce a cheaper booking than the guest expects.  Duplicate
// ids count once.
func resolveOffers(offerIDs []uint64, eligible []model.Offer) ([]model.Offer, error) {
	if len(offerIDs) == 0 {
		return nil, nil
	}
	byID := make(map[uint64]model.Offer, len(eligible))
	for _, o := range eligible {
		byID[o.ID] = o
	}
	seen := make(map[uint64]struct{}, len(offerIDs))
	selected := make([]model.Offer, 0, len(offerIDs))
	ie := newInputError()
	for _, id := range offerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		o, ok := byID[id]
		if !ok {
			ie.add("offer_ids", fmt.Sprintf("offer %d is not available for this room", id))
			continue
		}
		selected = append(selected, o)
	}
	if ie.fieldCount() > 0 {
		return nil, ie
	}
	return selected, nil
}

// totalCents computes the booking total: nights times the nightly
// rate plus the selected offers, with the optional long-stay discount
// applied last.  All arithmetic is in integer cents.
func (e *Engine) totalCents(pricePerNightCents int64, nights int, offers []model.Offer) int64 {
	total := int64(nights) * pricePerNightCents
	for _, o := range offers {
		total += o.PriceCents
	}
	return e.applyLongStayDiscount(total, nights)
}

// applyLongStayDiscount reduces the total by the configured percent
// when the stay reaches the threshold.  Disabled when the threshold
// is zero.  The division rounds half-up to the nearest cent.
func (e *Engine) applyLongStayDiscount(total int64, nights int) int64 {
	if e.cfg.LongStayMinNights <= 0 || nights < e.cfg.LongStayMinNights {
		return total
	}
	pct := int64(e.cfg.LongStayDiscountPct)
	if pct <= 0 || pct >= 100 {
		return total
	}
	return (total*(100-pct) + 50) / 100
}

// BonusPoints returns the loyalty points a completed booking awards.
func BonusPoints(totalPriceCents int64) int64 {
	if totalPriceCents <= 0 {
		return 0
	}
	return totalPriceCents / bonusDivisorCents
}
