package bookings

import (
	"time"

	"aerolink/internal/wizard"

	"github.com/google/uuid"
)

// Booking is the committed result of a confirmed booking session
type Booking struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	FlightID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"flight_id"`
	SessionID  string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"session_id"`
	BookingRef string     `gorm:"type:varchar(6);uniqueIndex;not null" json:"booking_ref"`
	CabinClass string     `gorm:"type:varchar(20);not null" json:"cabin_class"`
	TotalSeats int        `gorm:"not null" json:"total_seats"`
	BaseFare   float64    `gorm:"type:numeric(12,2);not null" json:"base_fare"`
	Taxes      float64    `gorm:"type:numeric(12,2);not null" json:"taxes"`
	TotalPrice float64    `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Currency   string     `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status     Status     `gorm:"type:varchar(20);check:status IN ('CONFIRMED', 'CANCELLED');default:'CONFIRMED'" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relationships
	Passengers []BookingPassenger `json:"passengers,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	Payments   []Payment          `json:"payments,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT;"`
}

// BookingPassenger is one traveller on one seat
type BookingPassenger struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID       uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	SeatNumber      string    `gorm:"type:varchar(4);not null" json:"seat_number"`
	FirstName       string    `gorm:"not null" json:"first_name"`
	LastName        string    `gorm:"not null" json:"last_name"`
	Email           string    `gorm:"not null" json:"email"`
	Phone           string    `gorm:"not null" json:"phone"`
	DateOfBirth     string    `gorm:"type:date;not null" json:"date_of_birth"`
	PassengerType   string    `gorm:"type:varchar(10);check:passenger_type IN ('local', 'foreign');not null" json:"passenger_type"`
	NationalID      string    `json:"national_id,omitempty"`
	PassportNumber  string    `json:"passport_number,omitempty"`
	Nationality     string    `json:"nationality,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Payment records the charge that paid for a booking
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	Amount        float64    `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Status        string     `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED', 'REFUNDED');default:'PENDING'" json:"status"`
	PaymentMethod string     `gorm:"type:varchar(50)" json:"payment_method"`
	CardLast4     string     `gorm:"type:varchar(4)" json:"card_last4"`
	TransactionID string     `gorm:"unique" json:"transaction_id"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (BookingPassenger) TableName() string {
	return "booking_passengers"
}

func (Payment) TableName() string {
	return "payments"
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) SeatNumbers() []string {
	seats := make([]string, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		seats = append(seats, p.SeatNumber)
	}
	return seats
}

// newBooking maps the payment hand-off and charge onto the persisted shape
func newBooking(sessionID, reference string, userID *uuid.UUID, flightID uuid.UUID, cabin wizard.CabinClass,
	passengers []wizard.PassengerRecord, pricing wizard.Pricing, charge *wizard.PaymentResult) *Booking {

	b := &Booking{
		UserID:     userID,
		FlightID:   flightID,
		SessionID:  sessionID,
		BookingRef: reference,
		CabinClass: string(cabin),
		TotalSeats: len(passengers),
		BaseFare:   pricing.BaseFare,
		Taxes:      pricing.Taxes,
		TotalPrice: pricing.Total,
		Currency:   pricing.Currency,
		Status:     StatusConfirmed,
	}

	for _, p := range passengers {
		b.Passengers = append(b.Passengers, BookingPassenger{
			SeatNumber:      p.Seat,
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			Email:           p.Email,
			Phone:           p.Phone,
			DateOfBirth:     p.DateOfBirth,
			PassengerType:   string(p.PassengerType),
			NationalID:      p.NationalID,
			PassportNumber:  p.PassportNumber,
			Nationality:     p.Nationality,
			SpecialRequests: p.SpecialRequests,
		})
	}

	processedAt := charge.ProcessedAt
	b.Payments = []Payment{{
		Amount:        charge.Amount,
		Currency:      charge.Currency,
		Status:        PaymentStatusCompleted,
		PaymentMethod: "card",
		CardLast4:     charge.CardLast4,
		TransactionID: charge.TransactionID,
		ProcessedAt:   &processedAt,
	}}
	return b
}
