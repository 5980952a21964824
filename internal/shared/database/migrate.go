package database

import (
	"fmt"

	"aerolink/internal/auth"
	"aerolink/internal/bookings"
	"aerolink/internal/flights"
	"aerolink/internal/seats"
	"aerolink/internal/users"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&auth.VerificationToken{},
		&flights.Airport{},
		&flights.Flight{},
		&flights.CabinInventory{},
		&seats.FlightSeat{},
		&bookings.Booking{},
		&bookings.BookingPassenger{},
		&bookings.Payment{},
	); err != nil {
		return err
	}

	return migrateIndexes(db)
}

// migrateIndexes adds the lookups AutoMigrate cannot express through tags
func migrateIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_flights_route_day
			ON flights (departure_airport_id, arrival_airport_id, departure_time)`,
		`CREATE INDEX IF NOT EXISTS idx_flight_seats_occupied
			ON flight_seats (flight_id) WHERE is_occupied`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
