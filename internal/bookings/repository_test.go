package bookings

import (
	"regexp"
	"testing"
	"time"

	"aerolink/internal/seats"
	"aerolink/internal/shared/database/databasetest"
	"aerolink/internal/wizard"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOccupier struct {
	seats []string
	err   error
}

func (f *fakeOccupier) OccupySeats(tx *gorm.DB, flightID, bookingID uuid.UUID, seatNumbers []string) error {
	f.seats = seatNumbers
	return f.err
}

type fakeInventory struct {
	cabin string
	n     int
}

func (f *fakeInventory) DecrementAvailableSeats(tx *gorm.DB, flightID uuid.UUID, cabinClass string, n int) error {
	f.cabin, f.n = cabinClass, n
	return nil
}

func testBooking() *Booking {
	pricing := wizard.Quote(250, wizard.CabinBusiness, 2, wizard.PricingPolicy{TaxPerSeat: 35, Currency: "USD"})
	return newBooking("sess-1", "K7Q2ZD", nil, uuid.New(), wizard.CabinBusiness,
		[]wizard.PassengerRecord{
			{Seat: "5A", FirstName: "Amara", LastName: "Okafor", DateOfBirth: "1990-04-12", PassengerType: wizard.PassengerLocal, NationalID: "N1"},
			{Seat: "5B", FirstName: "Chidi", LastName: "Okafor", DateOfBirth: "1992-01-30", PassengerType: wizard.PassengerLocal, NationalID: "N2"},
		},
		pricing,
		&wizard.PaymentResult{TransactionID: "txn_1", Amount: pricing.Total, Currency: "USD", CardLast4: "3456", ProcessedAt: time.Now()},
	)
}

func TestRepository_CreateConfirmedBooking(t *testing.T) {
	db, mock := databasetest.New(t)
	occupier, inventory := &fakeOccupier{}, &fakeInventory{}
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bookings" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID.String()))
	mock.ExpectQuery(`INSERT INTO "booking_passengers" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()).AddRow(uuid.NewString()))
	mock.ExpectQuery(`INSERT INTO "payments" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	b := testBooking()
	require.NoError(t, NewRepository(db, occupier, inventory).CreateConfirmedBooking(t.Context(), b))

	assert.Equal(t, bookingID, b.ID)
	assert.Equal(t, []string{"5A", "5B"}, occupier.seats)
	assert.Equal(t, "business", inventory.cabin)
	assert.Equal(t, 2, inventory.n)
	for _, p := range b.Passengers {
		assert.Equal(t, bookingID, p.BookingID)
	}
	assert.Equal(t, bookingID, b.Payments[0].BookingID)
	assert.Equal(t, 1320.0, b.TotalPrice)
}

func TestRepository_CreateConfirmedBookingRollsBackOnTakenSeat(t *testing.T) {
	db, mock := databasetest.New(t)
	occupier := &fakeOccupier{err: &seats.SeatsTakenError{Seats: []string{"5B"}}}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectRollback()

	err := NewRepository(db, occupier, &fakeInventory{}).CreateConfirmedBooking(t.Context(), testBooking())
	assert.ErrorIs(t, err, seats.ErrSeatsTaken)
	assert.True(t, isSeatConflict(err))
}

func TestRepository_ReferenceExists(t *testing.T) {
	db, mock := databasetest.New(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings" WHERE booking_ref = $1`)).
		WithArgs("K7Q2ZD").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := NewRepository(db, nil, nil).ReferenceExists(t.Context(), "K7Q2ZD")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_GetUserBookingsEmpty(t *testing.T) {
	db, mock := databasetest.New(t)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings" WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE user_id = \$1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, total, err := NewRepository(db, nil, nil).GetUserBookings(t.Context(), userID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, total)
}
