package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aerolink/internal/shared/constants"
	"aerolink/internal/wizard"
	"aerolink/pkg/cache"
	"aerolink/pkg/logger"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidFlightID       = errors.New("invalid flight ID")
	ErrFlightNotFound        = errors.New("flight not found")
	ErrAirportNotFound       = errors.New("airport not found")
	ErrSameAirport           = errors.New("departure and arrival airports must differ")
	ErrInvalidDate           = errors.New("dates must use YYYY-MM-DD")
	ErrReturnDateRequired    = errors.New("returnDate is required for round trips")
	ErrReturnBeforeDeparture = errors.New("returnDate cannot be before departureDate")
	ErrFlightNotBookable     = errors.New("flight is not open for booking")
	ErrCabinSoldOut          = errors.New("not enough seats left in this cabin")
)

type Service interface {
	// SearchFlights cancels any search still running for the same clientKey
	SearchFlights(ctx context.Context, clientKey string, req SearchFlightsRequest) (*SearchFlightsResponse, error)
	GetAllAirports(ctx context.Context) ([]Airport, error)
	GetAllFlights(ctx context.Context, departureAirportID string) ([]Flight, error)
	GetFlight(ctx context.Context, flightID string) (*Flight, error)

	// BookableFlight snapshots a flight for a new booking after checking it is
	// scheduled and the cabin still has room for seats passengers
	BookableFlight(ctx context.Context, flightID string, cabin wizard.CabinClass, seats int) (*wizard.FlightRef, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	guard *SearchGuard
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, guard *SearchGuard, log *logger.Logger) Service {
	if guard == nil {
		guard = NewSearchGuard()
	}
	return &service{repo: repo, cache: cacheService, guard: guard, log: log}
}

type searchPlan struct {
	cabin     wizard.CabinClass
	departure time.Time
	ret       *time.Time
}

func planSearch(req SearchFlightsRequest) (*searchPlan, error) {
	if strings.EqualFold(strings.TrimSpace(req.From), strings.TrimSpace(req.To)) {
		return nil, ErrSameAirport
	}
	cabin, ok := wizard.ParseCabinClass(req.CabinClass)
	if !ok {
		return nil, fmt.Errorf("%w: %q", wizard.ErrInvalidCabinClass, req.CabinClass)
	}
	dep, err := time.Parse(dateLayout, req.DepartureDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	plan := &searchPlan{cabin: cabin, departure: dep}
	if req.Type == TripRoundTrip {
		if req.ReturnDate == "" {
			return nil, ErrReturnDateRequired
		}
		ret, err := time.Parse(dateLayout, req.ReturnDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		if ret.Before(dep) {
			return nil, ErrReturnBeforeDeparture
		}
		plan.ret = &ret
	}
	return plan, nil
}

func (s *service) SearchFlights(ctx context.Context, clientKey string, req SearchFlightsRequest) (*SearchFlightsResponse, error) {
	plan, err := planSearch(req)
	if err != nil {
		return nil, err
	}

	ctx, done := s.guard.Begin(ctx, clientKey)
	defer done()

	from, err := s.resolveAirport(ctx, req.From)
	if err != nil {
		return nil, s.supersededOr(ctx, clientKey, err)
	}
	to, err := s.resolveAirport(ctx, req.To)
	if err != nil {
		return nil, s.supersededOr(ctx, clientKey, err)
	}

	resp := &SearchFlightsResponse{}
	resp.Outbound, err = s.searchLeg(ctx, from, to, plan.departure, plan.cabin)
	if err != nil {
		return nil, s.supersededOr(ctx, clientKey, err)
	}
	if plan.ret != nil {
		resp.Return, err = s.searchLeg(ctx, to, from, *plan.ret, plan.cabin)
		if err != nil {
			return nil, s.supersededOr(ctx, clientKey, err)
		}
	}

	// A newer search may have started while we were answering from cache
	if Superseded(ctx) {
		return nil, s.supersededOr(ctx, clientKey, ErrSearchSuperseded)
	}
	return resp, nil
}

func (s *service) supersededOr(ctx context.Context, clientKey string, err error) error {
	if Superseded(ctx) {
		s.log.LogSearchSuperseded(ctx, clientKey)
		return ErrSearchSuperseded
	}
	return err
}

func (s *service) resolveAirport(ctx context.Context, code string) (*Airport, error) {
	airports, err := s.GetAllAirports(ctx)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	for i := range airports {
		if strings.EqualFold(airports[i].Code, code) {
			return &airports[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAirportNotFound, strings.ToUpper(code))
}

func (s *service) searchLeg(ctx context.Context, from, to *Airport, day time.Time, cabin wizard.CabinClass) ([]FlightRow, error) {
	key := constants.BuildFlightSearchKey(from.Code, to.Code, day.Format(dateLayout), string(cabin))

	var rows []FlightRow
	err := s.cache.GetOrSet(ctx, key, constants.TTL_FLIGHT_SEARCH, func() (interface{}, error) {
		found, err := s.repo.SearchFlights(ctx, from.ID, to.ID, day, string(cabin))
		if err != nil {
			return nil, err
		}
		if found == nil {
			found = []FlightRow{}
		}
		return found, nil
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *service) GetAllAirports(ctx context.Context) ([]Airport, error) {
	var airports []Airport
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_AIRPORTS_ALL, constants.TTL_AIRPORTS, func() (interface{}, error) {
		return s.repo.GetAllAirports(ctx)
	}, &airports)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch airports: %w", err)
	}
	return airports, nil
}

func (s *service) GetAllFlights(ctx context.Context, departureAirportID string) ([]Flight, error) {
	var filter *uuid.UUID
	if departureAirportID != "" {
		id, err := uuid.Parse(departureAirportID)
		if err != nil {
			return nil, ErrAirportNotFound
		}
		filter = &id
	}

	var flights []Flight
	err := s.cache.GetOrSet(ctx, constants.BuildFlightsByDepartureKey(departureAirportID), constants.TTL_FLIGHTS_LIST,
		func() (interface{}, error) {
			return s.repo.GetAllFlights(ctx, filter)
		}, &flights)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flights: %w", err)
	}
	return flights, nil
}

func (s *service) GetFlight(ctx context.Context, flightID string) (*Flight, error) {
	id, err := uuid.Parse(flightID)
	if err != nil {
		return nil, ErrInvalidFlightID
	}
	return s.repo.GetFlightByID(ctx, id)
}

func (s *service) BookableFlight(ctx context.Context, flightID string, cabin wizard.CabinClass, seats int) (*wizard.FlightRef, error) {
	flight, err := s.GetFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if !flight.IsBookable() {
		return nil, fmt.Errorf("%w: status %s", ErrFlightNotBookable, flight.Status)
	}

	available, err := s.repo.GetAvailableSeats(ctx, flight.ID, string(cabin))
	if err != nil {
		return nil, err
	}
	if available < seats {
		return nil, fmt.Errorf("%w: %d left in %s", ErrCabinSoldOut, available, cabin)
	}
	return flight.ToRef(), nil
}
