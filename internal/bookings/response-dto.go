package bookings

import (
	"time"

	"aerolink/internal/wizard"
)

// SessionView is everything a client needs to render the current step
type SessionView struct {
	SessionID        string           `json:"session_id"`
	Step             wizard.Step      `json:"step"`
	Flight           wizard.FlightRef `json:"flight"`
	CabinClass       string           `json:"cabin_class"`
	PassengerCount   int              `json:"passenger_count"`
	SelectedSeats    []string         `json:"selected_seats"`
	CanContinue      bool             `json:"can_continue"`
	AvailableSeats   int              `json:"available_seats"`
	Grid             []wizard.SeatRow `json:"grid"`
	Pricing          *wizard.Pricing  `json:"pricing,omitempty"`
	BookingReference string           `json:"booking_reference,omitempty"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

type ToggleResponse struct {
	Outcome       wizard.ToggleOutcome `json:"outcome"`
	Seat          string               `json:"seat"`
	SelectedSeats []string             `json:"selected_seats"`
	CanContinue   bool                 `json:"can_continue"`
}

type PassengerFormsResponse struct {
	SessionID string                   `json:"session_id"`
	Step      wizard.Step              `json:"step"`
	Seats     []string                 `json:"seats"`
	Forms     []wizard.PassengerRecord `json:"forms"`
	Pricing   *wizard.Pricing          `json:"pricing,omitempty"`
}

// PaymentSummary is read from the passenger hand-off, not from the draft
type PaymentSummary struct {
	SessionID  string                    `json:"session_id"`
	Flight     wizard.FlightRef          `json:"flight"`
	CabinClass string                    `json:"cabin_class"`
	Seats      []string                  `json:"seats"`
	Passengers []wizard.ReceiptPassenger `json:"passengers"`
	Pricing    wizard.Pricing            `json:"pricing"`
	ExpiresAt  time.Time                 `json:"expires_at"`
}

type BookingSummary struct {
	ID         string           `json:"id"`
	BookingRef string           `json:"booking_ref"`
	FlightID   string           `json:"flight_id"`
	CabinClass string           `json:"cabin_class"`
	Status     string           `json:"status"`
	Seats      []string         `json:"seats"`
	Passengers []PassengerBrief `json:"passengers"`
	TotalPrice float64          `json:"total_price"`
	Currency   string           `json:"currency"`
	Payment    *PaymentInfo     `json:"payment,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type PassengerBrief struct {
	SeatNumber string `json:"seat_number"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type PaymentInfo struct {
	ID            string     `json:"id"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	CardLast4     string     `json:"card_last4"`
	TransactionID string     `json:"transaction_id"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

type BookingListResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

func toBookingSummary(b *Booking) BookingSummary {
	summary := BookingSummary{
		ID:         b.ID.String(),
		BookingRef: b.BookingRef,
		FlightID:   b.FlightID.String(),
		CabinClass: b.CabinClass,
		Status:     b.Status.String(),
		Seats:      b.SeatNumbers(),
		Passengers: make([]PassengerBrief, 0, len(b.Passengers)),
		TotalPrice: b.TotalPrice,
		Currency:   b.Currency,
		CreatedAt:  b.CreatedAt,
	}
	for _, p := range b.Passengers {
		summary.Passengers = append(summary.Passengers, PassengerBrief{
			SeatNumber: p.SeatNumber,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
		})
	}
	if len(b.Payments) > 0 {
		p := b.Payments[0]
		summary.Payment = &PaymentInfo{
			ID:            p.ID.String(),
			Amount:        p.Amount,
			Currency:      p.Currency,
			Status:        p.Status,
			PaymentMethod: p.PaymentMethod,
			CardLast4:     p.CardLast4,
			TransactionID: p.TransactionID,
			ProcessedAt:   p.ProcessedAt,
		}
	}
	return summary
}
