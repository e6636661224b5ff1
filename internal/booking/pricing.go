package booking

import (
	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/pkg/currency"
)

// Pricing is the derived breakdown of a booking session. The invariant
// Total = Base + Taxes + Fees + Insurance + Extras holds at all times; every
// mutation goes through recompute.
type Pricing struct {
	Base      float64 `json:"base"`
	Taxes     float64 `json:"taxes"`
	Fees      float64 `json:"fees"`
	Insurance float64 `json:"insurance"`
	Extras    float64 `json:"extras"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
}

// ComputePricing prices a session once at creation. The fare convention is
// per-passenger: base = sum of per-offer totals multiplied by the passenger
// count. Taxes are a fixed rate of base, rounded to cents; fees are a flat
// surcharge per session. Extras start at zero and later absorb confirmed
// seat charges.
func ComputePricing(offers []models.Offer, passengers int, taxRate, fixedFee, insurance float64, cur string) Pricing {
	if passengers < 1 {
		passengers = 1
	}

	base := 0.0
	for _, o := range offers {
		base += o.Price.Total
	}
	base = currency.RoundCents(base * float64(passengers))

	p := Pricing{
		Base:      base,
		Taxes:     currency.RoundCents(base * taxRate),
		Fees:      currency.RoundCents(fixedFee),
		Insurance: currency.RoundCents(insurance),
		Currency:  cur,
	}
	p.recompute()
	return p
}

func (p *Pricing) recompute() {
	p.Total = currency.RoundCents(p.Base + p.Taxes + p.Fees + p.Insurance + p.Extras)
}

// SetExtras replaces the extras line (seat charges) and restores the total
// invariant.
func (p *Pricing) SetExtras(amount float64) {
	p.Extras = currency.RoundCents(amount)
	p.recompute()
}
