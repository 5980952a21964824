package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"aerolink/internal/flights"
	"aerolink/internal/seats"
	"aerolink/internal/shared/config"
	"aerolink/internal/shared/database"
	"aerolink/internal/users"
	"aerolink/internal/wizard"
	"aerolink/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db     *database.DB
	layout wizard.Layout
	rng    *rand.Rand
}

// cabinShare splits the seat layout between the three cabins
var cabinShare = []struct {
	cabin wizard.CabinClass
	ratio float64
}{
	{wizard.CabinFirst, 1.0 / 15},
	{wizard.CabinBusiness, 2.0 / 15},
	{wizard.CabinEconomy, 12.0 / 15},
}

func main() {
	fmt.Println("Starting Aerolink database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg, logger.New())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.PostgreSQL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	seeder := &Seeder{
		db:     db,
		layout: wizard.NewLayout(cfg.Booking.SeatRows, cfg.Booking.SeatColumns),
		rng:    rand.New(rand.NewPCG(42, 7)),
	}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSeeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"payments",
		"booking_passengers",
		"bookings",
		"flight_seats",
		"flight_cabin_inventory",
		"flights",
		"airports",
		"verification_tokens",
		"users",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	airports, err := s.SeedAirports()
	if err != nil {
		return fmt.Errorf("failed to seed airports: %w", err)
	}

	if err := s.SeedFlights(airports); err != nil {
		return fmt.Errorf("failed to seed flights: %w", err)
	}

	// cached seat maps and searches refer to the truncated rows
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: failed to clear Redis cache: %v", err)
	}
	return nil
}

// SeedUsers creates one admin and two travellers, all with password "qwerty"
func (s *Seeder) SeedUsers() error {
	fmt.Println("  Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	usersData := []struct {
		firstName, lastName, username, email, phone string
		role                                        users.Role
	}{
		{"Admin", "User", "admin", "admin@aerolink.com", "+10000000001", users.RoleAdmin},
		{"Amara", "Okafor", "amara", "amara@example.com", "+10000000002", users.RoleUser},
		{"Lucas", "Moreau", "lucas", "lucas@example.com", "+10000000003", users.RoleUser},
	}

	for _, u := range usersData {
		user := users.User{
			ID:              uuid.New(),
			FirstName:       u.firstName,
			LastName:        u.lastName,
			Username:        u.username,
			Email:           u.email,
			Phone:           u.phone,
			Password:        string(hashedPassword),
			Role:            u.role,
			EmailVerifiedAt: &now,
		}
		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.email, err)
		}
		fmt.Printf("    Created user: %s (%s)\n", user.Email, user.Role)
	}
	return nil
}

// SeedAirports creates the airports the flight schedule connects
func (s *Seeder) SeedAirports() ([]flights.Airport, error) {
	fmt.Println("  Seeding airports...")

	airports := []flights.Airport{
		{Code: "JFK", Name: "John F. Kennedy International", City: "New York", Country: "United States"},
		{Code: "LHR", Name: "Heathrow", City: "London", Country: "United Kingdom"},
		{Code: "CDG", Name: "Charles de Gaulle", City: "Paris", Country: "France"},
		{Code: "DXB", Name: "Dubai International", City: "Dubai", Country: "United Arab Emirates"},
		{Code: "LOS", Name: "Murtala Muhammed International", City: "Lagos", Country: "Nigeria"},
		{Code: "SIN", Name: "Changi", City: "Singapore", Country: "Singapore"},
	}

	for i := range airports {
		airports[i].ID = uuid.New()
		if err := s.db.PostgreSQL.Create(&airports[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create airport %s: %w", airports[i].Code, err)
		}
		fmt.Printf("    Created airport: %s (%s)\n", airports[i].Code, airports[i].City)
	}
	return airports, nil
}

// SeedFlights schedules two flights a day for the next week on every
// ordered airport pair, each with cabin inventory and a few sold seats.
func (s *Seeder) SeedFlights(airports []flights.Airport) error {
	fmt.Println("  Seeding flights...")

	start := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	departures := []time.Duration{8 * time.Hour, 19*time.Hour + 30*time.Minute}
	count := 0

	for _, from := range airports {
		for _, to := range airports {
			if from.ID == to.ID {
				continue
			}
			for day := 0; day < 7; day++ {
				for slot, offset := range departures {
					dep := start.Add(time.Duration(day)*24*time.Hour + offset)
					flight := flights.Flight{
						ID:                 uuid.New(),
						FlightNumber:       fmt.Sprintf("AL%d", 100+count%900),
						DepartureAirportID: from.ID,
						ArrivalAirportID:   to.ID,
						DepartureTime:      dep,
						ArrivalTime:        dep.Add(time.Duration(3+s.rng.IntN(10))*time.Hour + time.Duration(slot*15)*time.Minute),
						BasePrice:          float64(120 + s.rng.IntN(48)*10),
						Status:             flights.StatusScheduled,
					}
					if err := s.createFlight(&flight); err != nil {
						return err
					}
					count++
				}
			}
		}
	}

	fmt.Printf("    Created %d flights\n", count)
	return nil
}

func (s *Seeder) createFlight(flight *flights.Flight) error {
	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(flight).Error; err != nil {
			return fmt.Errorf("failed to create flight %s: %w", flight.FlightNumber, err)
		}

		sold := s.soldSeats()
		total := s.layout.Rows * len(s.layout.Columns)
		allocated := 0
		for i, share := range cabinShare {
			seatsInCabin := int(float64(total) * share.ratio)
			if i == len(cabinShare)-1 {
				seatsInCabin = total - allocated
			}
			allocated += seatsInCabin

			available := seatsInCabin
			if share.cabin == wizard.CabinEconomy {
				available -= len(sold)
			}
			inv := flights.CabinInventory{
				FlightID:       flight.ID,
				CabinClass:     string(share.cabin),
				TotalSeats:     seatsInCabin,
				AvailableSeats: max(available, 0),
			}
			if err := tx.Create(&inv).Error; err != nil {
				return fmt.Errorf("failed to create inventory for %s: %w", flight.FlightNumber, err)
			}
		}

		for _, seat := range sold {
			row := seats.FlightSeat{FlightID: flight.ID, SeatNumber: seat, IsOccupied: true}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to occupy seat %s: %w", seat, err)
			}
		}
		return nil
	})
}

// soldSeats picks a handful of seats to show as taken on the map
func (s *Seeder) soldSeats() []string {
	all := make([]string, 0, s.layout.Rows*len(s.layout.Columns))
	for row := 1; row <= s.layout.Rows; row++ {
		for _, col := range s.layout.Columns {
			all = append(all, fmt.Sprintf("%d%s", row, col))
		}
	}
	n := 5 + s.rng.IntN(20)
	picked := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(all))[:n] {
		picked = append(picked, all[i])
	}
	return picked
}
