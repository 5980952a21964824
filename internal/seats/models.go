package seats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidFlightID = errors.New("invalid flight ID")
	ErrFlightNotFound  = errors.New("flight not found")
	ErrSeatsTaken      = errors.New("seats already taken")
)

// SeatsTakenError names the seats another booking got first
type SeatsTakenError struct {
	Seats []string
}

func (e *SeatsTakenError) Error() string {
	return fmt.Sprintf("seats already taken: %s", strings.Join(e.Seats, ", "))
}

func (e *SeatsTakenError) Unwrap() error {
	return ErrSeatsTaken
}

// FlightSeat is the occupancy row of one seat on one flight. Seats without a
// row are free.
type FlightSeat struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FlightID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_flight_seat" json:"flight_id"`
	SeatNumber string     `gorm:"type:varchar(4);not null;uniqueIndex:idx_flight_seat" json:"seat_number"`
	IsOccupied bool       `gorm:"not null;default:false;index" json:"is_occupied"`
	BookingID  *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for FlightSeat
func (FlightSeat) TableName() string {
	return "flight_seats"
}
