package bookings

import "aerolink/internal/wizard"

// StartSessionRequest leaves the search step with a chosen flight
type StartSessionRequest struct {
	FlightID       string `json:"flight_id" validate:"required,uuid"`
	PassengerCount int    `json:"passenger_count" validate:"required,min=1"`
	CabinClass     string `json:"cabin_class" validate:"omitempty,oneof=economy business first ECONOMY BUSINESS FIRST"`
}

type ToggleSeatRequest struct {
	Seat string `json:"seat" validate:"required,max=4"`
}

type SubmitPassengersRequest struct {
	Passengers []wizard.PassengerRecord `json:"passengers" validate:"required"`
}

type BackRequest struct {
	Step string `json:"step" validate:"required"`
}

// PaymentRequest is the card form. It is never persisted.
type PaymentRequest = wizard.PaymentDetails

// BookingListQuery pages through a user's bookings
type BookingListQuery struct {
	Limit  int `form:"limit,default=10" validate:"min=1,max=100"`
	Offset int `form:"offset,default=0" validate:"min=0"`
}
