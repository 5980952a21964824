package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"aerolink/internal/wizard"
	"aerolink/pkg/cache"
	"aerolink/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetAllAirports(ctx context.Context) ([]Airport, error) {
	args := m.Called(ctx)
	airports, _ := args.Get(0).([]Airport)
	return airports, args.Error(1)
}

func (m *mockRepository) GetAllFlights(ctx context.Context, departureAirportID *uuid.UUID) ([]Flight, error) {
	args := m.Called(ctx, departureAirportID)
	flights, _ := args.Get(0).([]Flight)
	return flights, args.Error(1)
}

func (m *mockRepository) GetFlightByID(ctx context.Context, id uuid.UUID) (*Flight, error) {
	args := m.Called(ctx, id)
	flight, _ := args.Get(0).(*Flight)
	return flight, args.Error(1)
}

func (m *mockRepository) SearchFlights(ctx context.Context, fromID, toID uuid.UUID, day time.Time, cabinClass string) ([]FlightRow, error) {
	args := m.Called(ctx, fromID, toID, day, cabinClass)
	rows, _ := args.Get(0).([]FlightRow)
	return rows, args.Error(1)
}

func (m *mockRepository) GetAvailableSeats(ctx context.Context, flightID uuid.UUID, cabinClass string) (int, error) {
	args := m.Called(ctx, flightID, cabinClass)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) DecrementAvailableSeats(tx *gorm.DB, flightID uuid.UUID, cabinClass string, n int) error {
	return m.Called(tx, flightID, cabinClass, n).Error(0)
}

var (
	jfk = Airport{ID: uuid.New(), Code: "JFK", Name: "John F. Kennedy", City: "New York", Country: "US"}
	lhr = Airport{ID: uuid.New(), Code: "LHR", Name: "Heathrow", City: "London", Country: "GB"}
)

func onDay(day int) interface{} {
	return mock.MatchedBy(func(d time.Time) bool { return d.Day() == day })
}

func newTestService(repo *mockRepository) Service {
	repo.On("GetAllAirports", mock.Anything).Return([]Airport{jfk, lhr}, nil).Maybe()
	return NewService(repo, cache.NewMemory(), NewSearchGuard(), logger.Discard())
}

func TestService_SearchOneWay(t *testing.T) {
	repo := &mockRepository{}
	row := FlightRow{ID: uuid.New(), FlightNumber: "AL204", DepartureAirportCode: "JFK", ArrivalAirportCode: "LHR", AvailableSeats: 12, CabinClass: "economy"}
	repo.On("SearchFlights", mock.Anything, jfk.ID, lhr.ID, onDay(20), "economy").Return([]FlightRow{row}, nil).Once()
	svc := newTestService(repo)

	req := SearchFlightsRequest{Type: TripOneWay, From: "jfk", To: "Lhr", DepartureDate: "2026-10-20"}
	for i := 0; i < 2; i++ {
		resp, err := svc.SearchFlights(context.Background(), "ip:1", req)
		require.NoError(t, err)
		require.Len(t, resp.Outbound, 1)
		assert.Equal(t, "AL204", resp.Outbound[0].FlightNumber)
		assert.Nil(t, resp.Return)
	}
	repo.AssertExpectations(t)
}

func TestService_SearchRoundTrip(t *testing.T) {
	repo := &mockRepository{}
	repo.On("SearchFlights", mock.Anything, jfk.ID, lhr.ID, onDay(20), "business").Return(nil, nil)
	repo.On("SearchFlights", mock.Anything, lhr.ID, jfk.ID, onDay(27), "business").
		Return([]FlightRow{{FlightNumber: "AL205"}}, nil)
	svc := newTestService(repo)

	resp, err := svc.SearchFlights(context.Background(), "ip:1", SearchFlightsRequest{
		Type: TripRoundTrip, From: "JFK", To: "LHR", DepartureDate: "2026-10-20", ReturnDate: "2026-10-27", CabinClass: "business",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Outbound)
	require.Len(t, resp.Return, 1)
	assert.Equal(t, "AL205", resp.Return[0].FlightNumber)
}

func TestService_SearchValidation(t *testing.T) {
	svc := newTestService(&mockRepository{})
	base := SearchFlightsRequest{Type: TripOneWay, From: "JFK", To: "LHR", DepartureDate: "2026-10-20"}

	tests := []struct {
		name   string
		mutate func(*SearchFlightsRequest)
		want   error
	}{
		{"same airport", func(r *SearchFlightsRequest) { r.To = "jfk" }, ErrSameAirport},
		{"bad date", func(r *SearchFlightsRequest) { r.DepartureDate = "20/10/2026" }, ErrInvalidDate},
		{"round trip without return", func(r *SearchFlightsRequest) { r.Type = TripRoundTrip }, ErrReturnDateRequired},
		{"return before departure", func(r *SearchFlightsRequest) {
			r.Type = TripRoundTrip
			r.ReturnDate = "2026-10-19"
		}, ErrReturnBeforeDeparture},
		{"unknown cabin", func(r *SearchFlightsRequest) { r.CabinClass = "premium" }, wizard.ErrInvalidCabinClass},
		{"unknown airport", func(r *SearchFlightsRequest) { r.To = "XXX" }, ErrAirportNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.SearchFlights(context.Background(), "ip:1", req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_NewerSearchSupersedesRunningOne(t *testing.T) {
	repo := &mockRepository{}
	started := make(chan struct{})
	repo.On("SearchFlights", mock.Anything, jfk.ID, lhr.ID, onDay(20), "economy").
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled)
	repo.On("SearchFlights", mock.Anything, jfk.ID, lhr.ID, onDay(21), "economy").
		Return([]FlightRow{{FlightNumber: "AL300"}}, nil)
	svc := newTestService(repo)

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.SearchFlights(context.Background(), "session:tab-1", SearchFlightsRequest{
			Type: TripOneWay, From: "JFK", To: "LHR", DepartureDate: "2026-10-20",
		})
		firstErr <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first search never reached the repository")
	}

	resp, err := svc.SearchFlights(context.Background(), "session:tab-1", SearchFlightsRequest{
		Type: TripOneWay, From: "JFK", To: "LHR", DepartureDate: "2026-10-21",
	})
	require.NoError(t, err)
	assert.Equal(t, "AL300", resp.Outbound[0].FlightNumber)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSearchSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first search was not cancelled")
	}
}

func TestService_BookableFlight(t *testing.T) {
	id := uuid.New()
	flight := &Flight{
		ID: id, FlightNumber: "AL204", BasePrice: 250, Status: StatusScheduled,
		DepartureAirport: &jfk, ArrivalAirport: &lhr,
	}

	t.Run("ok", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetFlightByID", mock.Anything, id).Return(flight, nil)
		repo.On("GetAvailableSeats", mock.Anything, id, "economy").Return(3, nil)

		ref, err := newTestService(repo).BookableFlight(context.Background(), id.String(), wizard.CabinEconomy, 2)
		require.NoError(t, err)
		assert.Equal(t, "JFK", ref.DepartureAirportCode)
		assert.Equal(t, "LHR", ref.ArrivalAirportCode)
		assert.Equal(t, 250.0, ref.BasePrice)
	})

	t.Run("sold out", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetFlightByID", mock.Anything, id).Return(flight, nil)
		repo.On("GetAvailableSeats", mock.Anything, id, "first").Return(1, nil)

		_, err := newTestService(repo).BookableFlight(context.Background(), id.String(), wizard.CabinFirst, 2)
		assert.ErrorIs(t, err, ErrCabinSoldOut)
	})

	t.Run("cancelled flight", func(t *testing.T) {
		cancelled := *flight
		cancelled.Status = StatusCancelled
		repo := &mockRepository{}
		repo.On("GetFlightByID", mock.Anything, id).Return(&cancelled, nil)

		_, err := newTestService(repo).BookableFlight(context.Background(), id.String(), wizard.CabinEconomy, 1)
		assert.ErrorIs(t, err, ErrFlightNotBookable)
	})

	t.Run("bad id", func(t *testing.T) {
		_, err := newTestService(&mockRepository{}).BookableFlight(context.Background(), "x", wizard.CabinEconomy, 1)
		assert.ErrorIs(t, err, ErrInvalidFlightID)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetFlightByID", mock.Anything, id).Return(nil, errors.New("db down"))

		_, err := newTestService(repo).BookableFlight(context.Background(), id.String(), wizard.CabinEconomy, 1)
		assert.ErrorContains(t, err, "db down")
	})
}
