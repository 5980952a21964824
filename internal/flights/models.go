package flights

import (
	"time"

	"aerolink/internal/wizard"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
)

type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

type Airport struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(3);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	City      string    `gorm:"not null" json:"city"`
	Country   string    `gorm:"not null" json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Airport) TableName() string {
	return "airports"
}

type Flight struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FlightNumber       string    `gorm:"type:varchar(10);not null;index" json:"flight_number"`
	DepartureAirportID uuid.UUID `gorm:"type:uuid;not null;index:idx_flight_route" json:"departure_airport_id"`
	ArrivalAirportID   uuid.UUID `gorm:"type:uuid;not null;index:idx_flight_route" json:"arrival_airport_id"`
	DepartureTime      time.Time `gorm:"not null;index" json:"departure_time"`
	ArrivalTime        time.Time `gorm:"not null" json:"arrival_time"`
	BasePrice          float64   `gorm:"type:decimal(10,2);not null" json:"base_price"`
	Status             Status    `gorm:"type:varchar(20);check:status IN ('scheduled', 'delayed', 'cancelled');default:'scheduled'" json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Relationships
	DepartureAirport *Airport         `json:"departure_airport,omitempty" gorm:"foreignKey:DepartureAirportID"`
	ArrivalAirport   *Airport         `json:"arrival_airport,omitempty" gorm:"foreignKey:ArrivalAirportID"`
	Inventory        []CabinInventory `json:"inventory,omitempty" gorm:"foreignKey:FlightID;constraint:OnDelete:CASCADE;"`
}

func (Flight) TableName() string {
	return "flights"
}

// IsBookable reports whether seats may still be sold on the flight
func (f *Flight) IsBookable() bool {
	return f.Status == StatusScheduled
}

// ToRef snapshots the flight for a booking draft. Airports must be preloaded.
func (f *Flight) ToRef() *wizard.FlightRef {
	ref := &wizard.FlightRef{
		ID:            f.ID.String(),
		FlightNumber:  f.FlightNumber,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		BasePrice:     f.BasePrice,
	}
	if f.DepartureAirport != nil {
		ref.DepartureAirportCode = f.DepartureAirport.Code
	}
	if f.ArrivalAirport != nil {
		ref.ArrivalAirportCode = f.ArrivalAirport.Code
	}
	return ref
}

// CabinInventory counts sellable seats per cabin of a flight
type CabinInventory struct {
	FlightID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"flight_id"`
	CabinClass     string    `gorm:"type:varchar(20);primaryKey" json:"cabin_class"`
	TotalSeats     int       `gorm:"not null" json:"total_seats"`
	AvailableSeats int       `gorm:"not null;check:available_seats >= 0" json:"available_seats"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (CabinInventory) TableName() string {
	return "flight_cabin_inventory"
}

// FlightRow is one search result
type FlightRow struct {
	ID                   uuid.UUID `json:"id"`
	FlightNumber         string    `json:"flight_number"`
	DepartureAirportCode string    `json:"departure_airport_code"`
	ArrivalAirportCode   string    `json:"arrival_airport_code"`
	DepartureTime        time.Time `json:"departure_time"`
	ArrivalTime          time.Time `json:"arrival_time"`
	BasePrice            float64   `json:"base_price"`
	AvailableSeats       int       `json:"available_seats"`
	CabinClass           string    `json:"cabin_class"`
}
