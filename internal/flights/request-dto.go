package flights

// SearchFlightsRequest keeps the camelCase field names the web client sends
type SearchFlightsRequest struct {
	Type          TripType `json:"type" validate:"required,oneof=one_way round_trip"`
	From          string   `json:"from" validate:"required,len=3,alpha"`
	To            string   `json:"to" validate:"required,len=3,alpha"`
	DepartureDate string   `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string   `json:"returnDate" validate:"omitempty,datetime=2006-01-02"`
	CabinClass    string   `json:"cabinClass" validate:"omitempty,oneof=economy business first"`
}

type FlightListQuery struct {
	DepartureAirportID string `form:"departure_airport_id" validate:"omitempty,uuid"`
}
