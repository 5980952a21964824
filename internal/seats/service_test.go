package seats

import (
	"context"
	"errors"
	"testing"

	"aerolink/internal/shared/config"
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

func (m *mockRepository) FlightExists(ctx context.Context, flightID uuid.UUID) (bool, error) {
	args := m.Called(ctx, flightID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) GetOccupiedSeatNumbers(ctx context.Context, flightID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, flightID)
	seats, _ := args.Get(0).([]string)
	return seats, args.Error(1)
}

func (m *mockRepository) OccupySeats(tx *gorm.DB, flightID, bookingID uuid.UUID, seatNumbers []string) error {
	return m.Called(tx, flightID, bookingID, seatNumbers).Error(0)
}

func newTestService(repo Repository) (Service, *cache.Memory) {
	mem := cache.NewMemory()
	cfg := config.BookingConfig{SeatRows: 4, SeatColumns: []string{"A", "B", "C", "D"}}
	return NewService(repo, mem, cfg, logger.Discard()), mem
}

func TestService_OccupiedSeatsIsCached(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	repo := &mockRepository{}
	repo.On("FlightExists", mock.Anything, flightID).Return(true, nil).Once()
	repo.On("GetOccupiedSeatNumbers", mock.Anything, flightID).Return([]string{"2B"}, nil).Once()
	svc, _ := newTestService(repo)

	for i := 0; i < 3; i++ {
		got, err := svc.OccupiedSeats(ctx, flightID.String())
		require.NoError(t, err)
		assert.Equal(t, []string{"2B"}, got)
	}
	repo.AssertExpectations(t)
}

func TestService_InvalidateRefetches(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	repo := &mockRepository{}
	repo.On("FlightExists", mock.Anything, flightID).Return(true, nil)
	repo.On("GetOccupiedSeatNumbers", mock.Anything, flightID).Return(nil, nil).Once()
	repo.On("GetOccupiedSeatNumbers", mock.Anything, flightID).Return([]string{"1A"}, nil).Once()
	svc, _ := newTestService(repo)

	first, err := svc.OccupiedSeats(ctx, flightID.String())
	require.NoError(t, err)
	assert.Empty(t, first)

	svc.Invalidate(ctx, flightID.String())

	second, err := svc.OccupiedSeats(ctx, flightID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"1A"}, second)
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{}
	svc, _ := newTestService(repo)

	_, err := svc.OccupiedSeats(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidFlightID)

	missing := uuid.New()
	repo.On("FlightExists", mock.Anything, missing).Return(false, nil)
	_, err = svc.SeatMap(ctx, missing.String())
	assert.ErrorIs(t, err, ErrFlightNotFound)

	broken := uuid.New()
	repo.On("FlightExists", mock.Anything, broken).Return(false, errors.New("connection reset"))
	_, err = svc.OccupiedSeats(ctx, broken.String())
	assert.ErrorContains(t, err, "connection reset")
}

func TestService_SeatMap(t *testing.T) {
	flightID := uuid.New()
	repo := &mockRepository{}
	repo.On("FlightExists", mock.Anything, flightID).Return(true, nil)
	repo.On("GetOccupiedSeatNumbers", mock.Anything, flightID).Return([]string{"3D", "1A"}, nil)
	svc, _ := newTestService(repo)

	m, err := svc.SeatMap(context.Background(), flightID.String())
	require.NoError(t, err)

	assert.Equal(t, 16, m.Capacity)
	assert.Equal(t, 14, m.Available)
	assert.Equal(t, []string{"1A", "3D"}, m.Occupied)
	assert.Equal(t, 2, m.AisleAfter)
	require.Len(t, m.Grid, 4)
	assert.Equal(t, "occupied", string(m.Grid[0].Seats[0].Status))
	assert.True(t, m.Grid[0].Seats[1].AisleAfter)
}
