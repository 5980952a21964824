package flights

import (
	"regexp"
	"testing"
	"time"

	"aerolink/internal/shared/database/databasetest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SearchFlights(t *testing.T) {
	db, mock := databasetest.New(t)
	repo := NewRepository(db)
	from, to, id := uuid.New(), uuid.New(), uuid.New()
	day := time.Date(2026, 10, 20, 15, 30, 0, 0, time.UTC)
	dep := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT f.id, f.flight_number.*FROM flights f.*ORDER BY f.departure_time`).
		WithArgs("business", from, to, StatusScheduled,
			time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "flight_number", "departure_airport_code", "arrival_airport_code",
			"departure_time", "arrival_time", "base_price", "available_seats", "cabin_class",
		}).AddRow(id.String(), "AL204", "JFK", "LHR", dep, dep.Add(7*time.Hour), 250.0, 8, "business"))

	rows, err := repo.SearchFlights(t.Context(), from, to, day, "business")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, "LHR", rows[0].ArrivalAirportCode)
	assert.Equal(t, 8, rows[0].AvailableSeats)
}

func TestRepository_DecrementAvailableSeats(t *testing.T) {
	update := regexp.QuoteMeta(`UPDATE "flight_cabin_inventory" SET "available_seats"=available_seats - $1 WHERE flight_id = $2 AND cabin_class = $3 AND available_seats >= $4`)

	t.Run("enough seats", func(t *testing.T) {
		db, mock := databasetest.New(t)
		flightID := uuid.New()
		mock.ExpectExec(update).
			WithArgs(2, flightID, "economy", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewRepository(db).DecrementAvailableSeats(db, flightID, "economy", 2))
	})

	t.Run("sold out", func(t *testing.T) {
		db, mock := databasetest.New(t)
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewRepository(db).DecrementAvailableSeats(db, uuid.New(), "economy", 2)
		assert.ErrorIs(t, err, ErrCabinSoldOut)
	})
}

func TestRepository_GetAvailableSeatsMissingRowIsZero(t *testing.T) {
	db, mock := databasetest.New(t)
	mock.ExpectQuery(`SELECT \* FROM "flight_cabin_inventory" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"flight_id", "cabin_class", "available_seats"}))

	n, err := NewRepository(db).GetAvailableSeats(t.Context(), uuid.New(), "first")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
