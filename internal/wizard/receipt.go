package wizard

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferenceLength is the length of a booking reference
const ReferenceLength = 6

// FlightRef is the flight snapshot a booking is made against
type FlightRef struct {
	ID                   string    `json:"id"`
	FlightNumber         string    `json:"flight_number"`
	DepartureAirportCode string    `json:"departure_airport_code"`
	ArrivalAirportCode   string    `json:"arrival_airport_code"`
	DepartureTime        time.Time `json:"departure_time"`
	ArrivalTime          time.Time `json:"arrival_time"`
	BasePrice            float64   `json:"base_price"`
}

// ReceiptPassenger is the part of a passenger printed on a receipt
type ReceiptPassenger struct {
	Seat      string `json:"seat"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Receipt is issued once payment succeeds
type Receipt struct {
	SessionID        string             `json:"session_id"`
	BookingReference string             `json:"booking_reference"`
	TransactionID    string             `json:"transaction_id"`
	Flight           FlightRef          `json:"flight"`
	CabinClass       CabinClass         `json:"cabin_class"`
	Seats            []string           `json:"seats"`
	Passengers       []ReceiptPassenger `json:"passengers"`
	Pricing          Pricing            `json:"pricing"`
	CardMasked       string             `json:"card_masked"`
	IssuedAt         time.Time          `json:"issued_at"`
}

// NewReceipt assembles a receipt from the confirmed data
func NewReceipt(sessionID, reference string, flight FlightRef, cabin CabinClass, seats []string,
	passengers []PassengerRecord, pricing Pricing, payment *PaymentResult) Receipt {

	rp := make([]ReceiptPassenger, 0, len(passengers))
	for _, p := range passengers {
		rp = append(rp, ReceiptPassenger{
			Seat:      p.Seat,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
		})
	}

	return Receipt{
		SessionID:        sessionID,
		BookingReference: reference,
		TransactionID:    payment.TransactionID,
		Flight:           flight,
		CabinClass:       cabin,
		Seats:            append([]string(nil), seats...),
		Passengers:       rp,
		Pricing:          pricing,
		CardMasked:       "**** " + payment.CardLast4,
		IssuedAt:         payment.ProcessedAt,
	}
}

// GenerateReference returns a random six character A-Z0-9 booking reference
func GenerateReference() (string, error) {
	buf := make([]byte, ReferenceLength)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate booking reference: %w", err)
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}
	return string(buf), nil
}
