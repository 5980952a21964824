package wizard

import (
	"math"
	"strings"
)

// CabinClass selects the fare multiplier
type CabinClass string

const (
	CabinEconomy  CabinClass = "economy"
	CabinBusiness CabinClass = "business"
	CabinFirst    CabinClass = "first"
)

var cabinMultipliers = map[CabinClass]float64{
	CabinEconomy:  1.0,
	CabinBusiness: 2.5,
	CabinFirst:    4.0,
}

func ParseCabinClass(s string) (CabinClass, bool) {
	c := CabinClass(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		c = CabinEconomy
	}
	return c, c.IsValid()
}

func (c CabinClass) IsValid() bool {
	_, ok := cabinMultipliers[c]
	return ok
}

func (c CabinClass) Multiplier() float64 {
	return cabinMultipliers[c]
}

// PricingPolicy is captured on the draft so a config change cannot reprice a session midway
type PricingPolicy struct {
	TaxPerSeat float64 `json:"tax_per_seat"`
	Currency   string  `json:"currency"`
}

// Pricing is derived from the flight, cabin and number of seats
type Pricing struct {
	FarePerSeat float64 `json:"fare_per_seat"`
	TaxPerSeat  float64 `json:"tax_per_seat"`
	Seats       int     `json:"seats"`
	BaseFare    float64 `json:"base_fare"`
	Taxes       float64 `json:"taxes"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

// Quote computes the price of seats on a flight with the given base price
func Quote(basePrice float64, cabin CabinClass, seats int, policy PricingPolicy) Pricing {
	fare := roundCents(basePrice * cabin.Multiplier())
	baseFare := roundCents(fare * float64(seats))
	taxes := roundCents(policy.TaxPerSeat * float64(seats))
	return Pricing{
		FarePerSeat: fare,
		TaxPerSeat:  policy.TaxPerSeat,
		Seats:       seats,
		BaseFare:    baseFare,
		Taxes:       taxes,
		Total:       roundCents(baseFare + taxes),
		Currency:    policy.Currency,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
