package seats

import "aerolink/internal/wizard"

// SeatMapResponse is the read-only seat map of a flight
type SeatMapResponse struct {
	FlightID   string           `json:"flight_id"`
	Rows       int              `json:"rows"`
	Columns    []string         `json:"columns"`
	AisleAfter int              `json:"aisle_after"`
	Capacity   int              `json:"capacity"`
	Available  int              `json:"available"`
	Occupied   []string         `json:"occupied"`
	Grid       []wizard.SeatRow `json:"grid"`
}
