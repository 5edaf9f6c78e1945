package settings

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nomadic-camps/booking-service/internal/domain"
)

// TentPrices holds the per-tent rates in AED.
type TentPrices struct {
	SingleTent    float64 `json:"singleTent"`
	MultipleTents float64 `json:"multipleTents"`
}

// AddOnPrices holds the flat rates for the three standard add-ons in AED.
type AddOnPrices struct {
	Charcoal       float64 `json:"charcoal"`
	Firewood       float64 `json:"firewood"`
	PortableToilet float64 `json:"portableToilet"`
}

// CustomAddOn is an admin-defined optional service with an arbitrary price.
type CustomAddOn struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// Settings is the mutable pricing configuration read by the pricing
// engine. It is a single document, edited by admins as a full replace;
// the last write wins and no history is kept. Bookings snapshot the
// settings in effect at creation time, so later edits never change a
// recorded total.
type Settings struct {
	TentPrices    TentPrices    `json:"tentPrices"`
	AddOnPrices   AddOnPrices   `json:"addOnPrices"`
	WadiSurcharge float64       `json:"wadiSurcharge"`
	VATRate       float64       `json:"vatRate"`
	CustomAddOns  []CustomAddOn `json:"customAddOns"`
}

// Defaults returns the pricing configuration used before any admin edit.
func Defaults() Settings {
	return Settings{
		TentPrices: TentPrices{
			SingleTent:    1497,
			MultipleTents: 1297,
		},
		AddOnPrices: AddOnPrices{
			Charcoal:       60,
			Firewood:       75,
			PortableToilet: 200,
		},
		WadiSurcharge: 250,
		VATRate:       0.05,
		CustomAddOns:  []CustomAddOn{},
	}
}

// Validate checks that all prices are non-negative, the VAT rate is a
// fraction in [0,1] and every custom add-on carries a name.
func (s Settings) Validate() error {
	fields := domain.FieldErrors{}

	if s.TentPrices.SingleTent < 0 {
		fields["tentPrices.singleTent"] = "price must not be negative"
	}
	if s.TentPrices.MultipleTents < 0 {
		fields["tentPrices.multipleTents"] = "price must not be negative"
	}
	if s.AddOnPrices.Charcoal < 0 {
		fields["addOnPrices.charcoal"] = "price must not be negative"
	}
	if s.AddOnPrices.Firewood < 0 {
		fields["addOnPrices.firewood"] = "price must not be negative"
	}
	if s.AddOnPrices.PortableToilet < 0 {
		fields["addOnPrices.portableToilet"] = "price must not be negative"
	}
	if s.WadiSurcharge < 0 {
		fields["wadiSurcharge"] = "surcharge must not be negative"
	}
	if s.VATRate < 0 || s.VATRate > 1 {
		fields["vatRate"] = "VAT rate must be a fraction between 0 and 1"
	}
	for i, addOn := range s.CustomAddOns {
		if strings.TrimSpace(addOn.Name) == "" {
			fields[fmt.Sprintf("customAddOns[%d].name", i)] = "name is required"
		}
		if addOn.Price < 0 {
			fields[fmt.Sprintf("customAddOns[%d].price", i)] = "price must not be negative"
		}
	}

	if len(fields) > 0 {
		return domain.NewFieldErrors(fields)
	}
	return nil
}

// Normalize assigns identifiers to custom add-ons that lack one and
// guarantees the slice is non-nil so it serializes as [].
func (s *Settings) Normalize() {
	if s.CustomAddOns == nil {
		s.CustomAddOns = []CustomAddOn{}
	}
	for i := range s.CustomAddOns {
		if s.CustomAddOns[i].ID == "" {
			s.CustomAddOns[i].ID = uuid.New().String()
		}
	}
}

// CustomAddOnByID looks up a custom add-on by identifier.
func (s Settings) CustomAddOnByID(id string) (CustomAddOn, bool) {
	for _, addOn := range s.CustomAddOns {
		if addOn.ID == id {
			return addOn, true
		}
	}
	return CustomAddOn{}, false
}
