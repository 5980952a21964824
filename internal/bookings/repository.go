package bookings

import (
	"context"
	"errors"
	"fmt"

	"aerolink/internal/flights"
	"aerolink/internal/seats"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeatOccupier marks seats as taken inside a booking transaction
type SeatOccupier interface {
	OccupySeats(tx *gorm.DB, flightID, bookingID uuid.UUID, seatNumbers []string) error
}

// CabinInventory decrements cabin availability inside a booking transaction
type CabinInventory interface {
	DecrementAvailableSeats(tx *gorm.DB, flightID uuid.UUID, cabinClass string, n int) error
}

type Repository interface {
	// CreateConfirmedBooking writes the booking, its seats, inventory, passengers
	// and payment in one transaction
	CreateConfirmedBooking(ctx context.Context, booking *Booking) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error)
}

type repository struct {
	db        *gorm.DB
	seats     SeatOccupier
	inventory CabinInventory
}

func NewRepository(db *gorm.DB, seatRepo SeatOccupier, inventory CabinInventory) Repository {
	return &repository{db: db, seats: seatRepo, inventory: inventory}
}

func (r *repository) CreateConfirmedBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		if err := r.seats.OccupySeats(tx, booking.FlightID, booking.ID, booking.SeatNumbers()); err != nil {
			return err
		}
		if err := r.inventory.DecrementAvailableSeats(tx, booking.FlightID, booking.CabinClass, booking.TotalSeats); err != nil {
			return err
		}

		for i := range booking.Passengers {
			booking.Passengers[i].BookingID = booking.ID
		}
		if len(booking.Passengers) > 0 {
			if err := tx.Create(&booking.Passengers).Error; err != nil {
				return fmt.Errorf("failed to create passengers: %w", err)
			}
		}

		for i := range booking.Payments {
			booking.Payments[i].BookingID = booking.ID
		}
		if len(booking.Payments) > 0 {
			if err := tx.Create(&booking.Payments).Error; err != nil {
				return fmt.Errorf("failed to record payment: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).Where("booking_ref = ?", reference).Count(&count).Error
	return count > 0, err
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if limit <= 0 {
		limit = 10
	}

	byUser := func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
	if err := r.db.WithContext(ctx).Model(&Booking{}).Scopes(byUser).Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(byUser).
		Preload("Passengers").
		Preload("Payments").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&bookings).Error
	return bookings, totalCount, err
}

// isSeatConflict reports whether a commit failed because inventory moved under the session
func isSeatConflict(err error) bool {
	return errors.Is(err, seats.ErrSeatsTaken) || errors.Is(err, flights.ErrCabinSoldOut)
}
