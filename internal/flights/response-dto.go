package flights

type SearchFlightsResponse struct {
	Outbound []FlightRow `json:"outbound"`
	Return   []FlightRow `json:"return,omitempty"`
}
