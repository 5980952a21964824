package flights

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Airports
	GetAllAirports(ctx context.Context) ([]Airport, error)

	// Flights
	GetAllFlights(ctx context.Context, departureAirportID *uuid.UUID) ([]Flight, error)
	GetFlightByID(ctx context.Context, id uuid.UUID) (*Flight, error)
	SearchFlights(ctx context.Context, fromID, toID uuid.UUID, day time.Time, cabinClass string) ([]FlightRow, error)

	// Cabin inventory
	GetAvailableSeats(ctx context.Context, flightID uuid.UUID, cabinClass string) (int, error)
	// DecrementAvailableSeats runs inside the caller's transaction
	DecrementAvailableSeats(tx *gorm.DB, flightID uuid.UUID, cabinClass string, n int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAllAirports(ctx context.Context) ([]Airport, error) {
	var airports []Airport
	err := r.db.WithContext(ctx).Order("code ASC").Find(&airports).Error
	return airports, err
}

func (r *repository) GetAllFlights(ctx context.Context, departureAirportID *uuid.UUID) ([]Flight, error) {
	var flights []Flight
	query := r.db.WithContext(ctx).
		Preload("DepartureAirport").
		Preload("ArrivalAirport")
	if departureAirportID != nil {
		query = query.Where("departure_airport_id = ?", *departureAirportID)
	}
	err := query.Order("departure_time ASC").Find(&flights).Error
	return flights, err
}

func (r *repository) GetFlightByID(ctx context.Context, id uuid.UUID) (*Flight, error) {
	var flight Flight
	err := r.db.WithContext(ctx).
		Preload("DepartureAirport").
		Preload("ArrivalAirport").
		First(&flight, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, err
	}
	return &flight, nil
}

// SearchFlights returns scheduled flights on the route departing on day that
// still have seats in the cabin
func (r *repository) SearchFlights(ctx context.Context, fromID, toID uuid.UUID, day time.Time, cabinClass string) ([]FlightRow, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var rows []FlightRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT f.id, f.flight_number,
		       dep.code AS departure_airport_code, arr.code AS arrival_airport_code,
		       f.departure_time, f.arrival_time, f.base_price,
		       fci.available_seats, fci.cabin_class
		FROM flights f
		JOIN airports dep ON dep.id = f.departure_airport_id
		JOIN airports arr ON arr.id = f.arrival_airport_id
		JOIN flight_cabin_inventory fci ON fci.flight_id = f.id AND fci.cabin_class = ? AND fci.available_seats > 0
		WHERE f.departure_airport_id = ? AND f.arrival_airport_id = ?
		  AND f.status = ?
		  AND f.departure_time >= ? AND f.departure_time < ?
		ORDER BY f.departure_time`,
		cabinClass, fromID, toID, StatusScheduled, start, end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) GetAvailableSeats(ctx context.Context, flightID uuid.UUID, cabinClass string) (int, error) {
	var inv CabinInventory
	err := r.db.WithContext(ctx).
		Where("flight_id = ? AND cabin_class = ?", flightID, cabinClass).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return inv.AvailableSeats, nil
}

func (r *repository) DecrementAvailableSeats(tx *gorm.DB, flightID uuid.UUID, cabinClass string, n int) error {
	result := tx.Model(&CabinInventory{}).
		Where("flight_id = ? AND cabin_class = ? AND available_seats >= ?", flightID, cabinClass, n).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCabinSoldOut
	}
	return nil
}
