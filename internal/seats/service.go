package seats

import (
	"context"
	"fmt"

	"aerolink/internal/shared/config"
	"aerolink/internal/shared/constants"
	"aerolink/internal/wizard"
	"aerolink/pkg/cache"
	"aerolink/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Layout is the cabin grid every flight uses
	Layout() wizard.Layout
	// OccupiedSeats is the occupied set of a flight, served from cache when warm
	OccupiedSeats(ctx context.Context, flightID string) ([]string, error)
	SeatMap(ctx context.Context, flightID string) (*SeatMapResponse, error)
	// Invalidate drops the cached occupied set after seats were sold
	Invalidate(ctx context.Context, flightID string)
}

type service struct {
	repo   Repository
	cache  cache.Service
	layout wizard.Layout
	log    *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, cfg config.BookingConfig, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		cache:  cacheService,
		layout: wizard.NewLayout(cfg.SeatRows, cfg.SeatColumns),
		log:    log,
	}
}

func (s *service) Layout() wizard.Layout {
	return s.layout
}

func (s *service) OccupiedSeats(ctx context.Context, flightID string) ([]string, error) {
	id, err := uuid.Parse(flightID)
	if err != nil {
		return nil, ErrInvalidFlightID
	}

	var occupied []string
	err = s.cache.GetOrSet(ctx, constants.BuildOccupiedSeatsKey(id.String()), constants.TTL_OCCUPIED_SEATS,
		func() (interface{}, error) {
			exists, err := s.repo.FlightExists(ctx, id)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, ErrFlightNotFound
			}
			seats, err := s.repo.GetOccupiedSeatNumbers(ctx, id)
			if err != nil {
				return nil, err
			}
			if seats == nil {
				seats = []string{}
			}
			return seats, nil
		}, &occupied)
	if err != nil {
		return nil, fmt.Errorf("occupied seats for flight %s: %w", id, err)
	}
	return occupied, nil
}

func (s *service) SeatMap(ctx context.Context, flightID string) (*SeatMapResponse, error) {
	occupied, err := s.OccupiedSeats(ctx, flightID)
	if err != nil {
		return nil, err
	}

	m, err := wizard.NewSeatMap(s.layout, occupied)
	if err != nil {
		return nil, err
	}

	return &SeatMapResponse{
		FlightID:   flightID,
		Rows:       s.layout.Rows,
		Columns:    s.layout.Columns,
		AisleAfter: s.layout.AisleAfter,
		Capacity:   m.Capacity(),
		Available:  m.AvailableCount(),
		Occupied:   m.Occupied(),
		Grid:       m.Grid(wizard.Selection{}),
	}, nil
}

func (s *service) Invalidate(ctx context.Context, flightID string) {
	if err := s.cache.Delete(ctx, constants.BuildOccupiedSeatsKey(flightID)); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate occupied seats", "flight_id", flightID, "error", err)
	}
}
