package booking

import (
	"github.com/nomadic-camps/booking-service/internal/domain/settings"
)

// AddOns holds the selection flags for the three standard add-ons.
type AddOns struct {
	Charcoal       bool `json:"charcoal"`
	Firewood       bool `json:"firewood"`
	PortableToilet bool `json:"portableToilet"`
}

// QuoteParams holds the inputs for a price calculation.
type QuoteParams struct {
	NumberOfTents        int
	Location             Location
	AddOns               AddOns
	HasChildren          bool
	SelectedCustomAddOns []string
}

// Breakdown is the itemized result of a price calculation, in AED.
// Values are kept unrounded; rounding happens only at display time.
type Breakdown struct {
	TentPrice         float64 `json:"tentPrice"`
	LocationSurcharge float64 `json:"locationSurcharge"`
	AddOnsCost        float64 `json:"addOnsCost"`
	CustomAddOnsCost  float64 `json:"customAddOnsCost"`
	Subtotal          float64 `json:"subtotal"`
	VAT               float64 `json:"vat"`
	Total             float64 `json:"total"`
}

// PricingEngine computes a price breakdown from booking parameters and
// a settings snapshot. Implementations must be pure: the same inputs
// always produce the same breakdown, with no side effects, so the
// engine is safe to call on every form change and again authoritatively
// at submission time.
type PricingEngine interface {
	Quote(params QuoteParams, s settings.Settings) Breakdown
}

// StandardPricingEngine implements the published NOMADIC price list.
type StandardPricingEngine struct{}

// NewStandardPricingEngine creates a new StandardPricingEngine.
func NewStandardPricingEngine() *StandardPricingEngine {
	return &StandardPricingEngine{}
}

// Quote computes the itemized price for the given parameters.
//
// The multi-tent rate is a flat per-tent rate applied to every tent,
// not a discount on tents beyond the first. The portable toilet is
// free whenever children are in the party, whatever its configured
// price. Selected custom add-on IDs that are absent from the current
// settings contribute nothing.
func (e *StandardPricingEngine) Quote(params QuoteParams, s settings.Settings) Breakdown {
	var tentPrice float64
	if params.NumberOfTents == 1 {
		tentPrice = s.TentPrices.SingleTent
	} else {
		tentPrice = s.TentPrices.MultipleTents * float64(params.NumberOfTents)
	}

	var locationSurcharge float64
	if params.Location == LocationWadi {
		locationSurcharge = s.WadiSurcharge
	}

	var addOnsCost float64
	if params.AddOns.Charcoal {
		addOnsCost += s.AddOnPrices.Charcoal
	}
	if params.AddOns.Firewood {
		addOnsCost += s.AddOnPrices.Firewood
	}
	if params.AddOns.PortableToilet && !params.HasChildren {
		addOnsCost += s.AddOnPrices.PortableToilet
	}

	var customAddOnsCost float64
	for _, id := range params.SelectedCustomAddOns {
		if addOn, ok := s.CustomAddOnByID(id); ok {
			customAddOnsCost += addOn.Price
		}
	}

	subtotal := tentPrice + locationSurcharge + addOnsCost + customAddOnsCost
	vat := subtotal * s.VATRate

	return Breakdown{
		TentPrice:         tentPrice,
		LocationSurcharge: locationSurcharge,
		AddOnsCost:        addOnsCost,
		CustomAddOnsCost:  customAddOnsCost,
		Subtotal:          subtotal,
		VAT:               vat,
		Total:             subtotal + vat,
	}
}
