package seats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	FlightExists(ctx context.Context, flightID uuid.UUID) (bool, error)
	GetOccupiedSeatNumbers(ctx context.Context, flightID uuid.UUID) ([]string, error)

	// OccupySeats runs inside the caller's transaction. It fails with a
	// *SeatsTakenError when any seat is already occupied.
	OccupySeats(tx *gorm.DB, flightID, bookingID uuid.UUID, seatNumbers []string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FlightExists(ctx context.Context, flightID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("flights").
		Where("id = ?", flightID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) GetOccupiedSeatNumbers(ctx context.Context, flightID uuid.UUID) ([]string, error) {
	var seatNumbers []string
	err := r.db.WithContext(ctx).
		Model(&FlightSeat{}).
		Where("flight_id = ? AND is_occupied = ?", flightID, true).
		Order("seat_number").
		Pluck("seat_number", &seatNumbers).Error
	if err != nil {
		return nil, err
	}
	return seatNumbers, nil
}

func (r *repository) OccupySeats(tx *gorm.DB, flightID, bookingID uuid.UUID, seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return nil
	}

	// 1. Lock rows that already exist so concurrent bookings queue behind us
	var taken []FlightSeat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("flight_id = ? AND seat_number IN ? AND is_occupied = ?", flightID, seatNumbers, true).
		Find(&taken).Error
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return &SeatsTakenError{Seats: seatNumbersOf(taken)}
	}

	// 2. Upsert, but only flip rows that are still free. A row occupied by a
	// concurrent commit is skipped and shows up as a short RowsAffected.
	now := time.Now().UTC()
	rows := make([]FlightSeat, 0, len(seatNumbers))
	for _, sn := range seatNumbers {
		rows = append(rows, FlightSeat{
			FlightID:   flightID,
			SeatNumber: sn,
			IsOccupied: true,
			BookingID:  &bookingID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	result := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "flight_id"}, {Name: "seat_number"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "flight_seats.is_occupied = ?", Vars: []interface{}{false}},
		}},
		DoUpdates: clause.AssignmentColumns([]string{"is_occupied", "booking_id", "updated_at"}),
	}).Create(&rows)
	if result.Error != nil {
		return result.Error
	}
	if int(result.RowsAffected) != len(seatNumbers) {
		return &SeatsTakenError{Seats: seatNumbers}
	}
	return nil
}

func seatNumbersOf(rows []FlightSeat) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.SeatNumber)
	}
	return out
}
