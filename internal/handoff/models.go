package handoff

import (
	"time"

	"aerolink/internal/wizard"
)

// SchemaVersion is bumped whenever a stored shape changes incompatibly.
// Entries written under another version are treated as stale.
const SchemaVersion = 1

// Kind names one hand-off slot of a booking session
type Kind string

const (
	KindDraft      Kind = "draft"
	KindSeats      Kind = "seats"
	KindPassengers Kind = "passengers"
	KindReceipt    Kind = "receipt"
)

// AllKinds lists every slot a session can own
var AllKinds = []Kind{KindDraft, KindSeats, KindPassengers, KindReceipt}

// Header is stamped on every stored hand-off
type Header struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SeatHandoff is the output of the seat step
type SeatHandoff struct {
	Header
	FlightID string   `json:"flight_id"`
	Seats    []string `json:"seats"`
}

// PassengerHandoff is everything the payment step needs, written when the passenger step succeeds
type PassengerHandoff struct {
	Header
	OwnerID    string                   `json:"owner_id,omitempty"`
	Flight     wizard.FlightRef         `json:"flight"`
	CabinClass wizard.CabinClass        `json:"cabin_class"`
	Seats      []string                 `json:"seats"`
	Passengers []wizard.PassengerRecord `json:"passengers"`
	Pricing    wizard.Pricing           `json:"pricing"`
}

// ReceiptHandoff holds the receipt shown on the confirmation page
type ReceiptHandoff struct {
	Header
	OwnerID string         `json:"owner_id,omitempty"`
	Receipt wizard.Receipt `json:"receipt"`
}

type draftEnvelope struct {
	Header
	Draft *wizard.BookingDraft `json:"draft"`
}

// NewPassengerHandoff captures the passenger step output of a draft
func NewPassengerHandoff(d *wizard.BookingDraft) *PassengerHandoff {
	h := &PassengerHandoff{
		OwnerID:    d.OwnerID,
		Flight:     d.Flight,
		CabinClass: d.CabinClass,
		Seats:      d.Selection.List(),
		Passengers: append([]wizard.PassengerRecord(nil), d.Passengers...),
	}
	h.SessionID = d.SessionID
	if d.Pricing != nil {
		h.Pricing = *d.Pricing
	}
	return h
}

// NewSeatHandoff captures the seat step output of a draft
func NewSeatHandoff(d *wizard.BookingDraft) *SeatHandoff {
	h := &SeatHandoff{FlightID: d.Flight.ID, Seats: d.Selection.List()}
	h.SessionID = d.SessionID
	return h
}
