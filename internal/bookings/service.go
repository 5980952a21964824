package bookings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"aerolink/internal/handoff"
	"aerolink/internal/notifications"
	"aerolink/internal/shared/config"
	"aerolink/internal/shared/constants"
	"aerolink/internal/wizard"
	"aerolink/pkg/cache"
	"aerolink/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound    = errors.New("booking session not found or expired")
	ErrSessionForbidden   = errors.New("booking session belongs to another user")
	ErrHandoffMissing     = errors.New("booking details are missing or expired, start a new search")
	ErrSeatsUnavailable   = errors.New("some selected seats are no longer available")
	ErrReferenceExhausted = errors.New("could not allocate a unique booking reference")
)

// SeatConflictError names the seats that were sold while the session was open
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSeatsUnavailable, e.Seats)
}

func (e *SeatConflictError) Unwrap() error {
	return ErrSeatsUnavailable
}

// FlightCatalog resolves the flight a session is started for
type FlightCatalog interface {
	BookableFlight(ctx context.Context, flightID string, cabin wizard.CabinClass, seats int) (*wizard.FlightRef, error)
}

// SeatInventory serves the seat layout and the occupied set of a flight
type SeatInventory interface {
	Layout() wizard.Layout
	OccupiedSeats(ctx context.Context, flightID string) ([]string, error)
	Invalidate(ctx context.Context, flightID string)
}

// ConfirmationSender delivers the booking confirmation email
type ConfirmationSender interface {
	SendBookingConfirmation(ctx context.Context, msg notifications.BookingConfirmation) error
}

type Service interface {
	Start(ctx context.Context, ownerID string, req StartSessionRequest) (*SessionView, error)
	View(ctx context.Context, sessionID, callerID string) (*SessionView, error)
	ToggleSeat(ctx context.Context, sessionID, callerID, seat string) (*ToggleResponse, error)
	ContinueToPassengers(ctx context.Context, sessionID, callerID string) (*PassengerFormsResponse, error)
	PassengerForms(ctx context.Context, sessionID, callerID string) (*PassengerFormsResponse, error)
	SubmitPassengers(ctx context.Context, sessionID, callerID string, records []wizard.PassengerRecord) (*PaymentSummary, error)
	PaymentSummary(ctx context.Context, sessionID, callerID string) (*PaymentSummary, error)
	Pay(ctx context.Context, sessionID, callerID string, card wizard.PaymentDetails) (*wizard.Receipt, error)
	Back(ctx context.Context, sessionID, callerID, step string) (*SessionView, error)
	Confirmation(ctx context.Context, sessionID, callerID string) (*wizard.Receipt, error)
	Abandon(ctx context.Context, sessionID, callerID string) error

	UserBookings(ctx context.Context, userID string, q BookingListQuery) (*BookingListResponse, error)
}

// Deps groups the collaborators of the booking service
type Deps struct {
	Repo       Repository
	Flights    FlightCatalog
	Seats      SeatInventory
	Handoffs   handoff.Store
	Gateway    wizard.Gateway
	Notifier   ConfirmationSender
	Cache      cache.Service
	Config     config.BookingConfig
	HandoffTTL time.Duration
	Log        *logger.Logger
}

type service struct {
	repo      Repository
	flights   FlightCatalog
	seats     SeatInventory
	handoffs  handoff.Store
	gateway   wizard.Gateway
	notifier  ConfirmationSender
	cache     cache.Service
	validator *wizard.Validator
	cfg       config.BookingConfig
	ttl       time.Duration
	locks     *sessionLocks
	log       *logger.Logger
	now       func() time.Time
}

func NewService(d Deps) Service {
	return &service{
		repo:      d.Repo,
		flights:   d.Flights,
		seats:     d.Seats,
		handoffs:  d.Handoffs,
		gateway:   d.Gateway,
		notifier:  d.Notifier,
		cache:     d.Cache,
		validator: wizard.NewValidator(),
		cfg:       d.Config,
		ttl:       d.HandoffTTL,
		locks:     newSessionLocks(),
		log:       d.Log,
		now:       time.Now,
	}
}

func (s *service) Start(ctx context.Context, ownerID string, req StartSessionRequest) (*SessionView, error) {
	cabin, ok := wizard.ParseCabinClass(req.CabinClass)
	if !ok {
		return nil, fmt.Errorf("%w: %q", wizard.ErrInvalidCabinClass, req.CabinClass)
	}
	if req.PassengerCount < 1 || req.PassengerCount > s.cfg.MaxPassengers {
		return nil, fmt.Errorf("%w: %d (allowed 1-%d)", wizard.ErrInvalidPassengerCount, req.PassengerCount, s.cfg.MaxPassengers)
	}

	flight, err := s.flights.BookableFlight(ctx, req.FlightID, cabin, req.PassengerCount)
	if err != nil {
		return nil, err
	}
	occupied, err := s.seats.OccupiedSeats(ctx, flight.ID)
	if err != nil {
		return nil, err
	}

	draft, err := wizard.NewDraft(wizard.DraftParams{
		SessionID:      uuid.NewString(),
		OwnerID:        ownerID,
		Flight:         flight,
		CabinClass:     cabin,
		PassengerCount: req.PassengerCount,
		MaxPassengers:  s.cfg.MaxPassengers,
		Layout:         s.seats.Layout(),
		Occupied:       occupied,
		Policy:         wizard.PricingPolicy{TaxPerSeat: s.cfg.TaxPerSeat, Currency: s.cfg.Currency},
		Now:            s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.handoffs.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.log.LogSessionStarted(ctx, draft.SessionID, flight.ID, draft.PassengerCount)
	s.log.LogStepAdvanced(ctx, draft.SessionID, wizard.StepSearch.String(), draft.Step.String())
	return s.view(draft)
}

func (s *service) View(ctx context.Context, sessionID, callerID string) (*SessionView, error) {
	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	return s.view(draft)
}

func (s *service) ToggleSeat(ctx context.Context, sessionID, callerID, seat string) (*ToggleResponse, error) {
	defer s.locks.lock(sessionID)()

	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	outcome, id, err := draft.ToggleSeat(seat)
	if err != nil {
		if wizard.IsCapacityError(err) || errors.Is(err, wizard.ErrUnknownSeat) {
			s.log.LogSeatRejected(ctx, sessionID, seat, err.Error())
		}
		return nil, err
	}
	if outcome != wizard.ToggleIgnored {
		if err := s.saveDraft(ctx, draft); err != nil {
			return nil, err
		}
	}

	return &ToggleResponse{
		Outcome:       outcome,
		Seat:          id,
		SelectedSeats: draft.Selection.List(),
		CanContinue:   draft.CanContinue(),
	}, nil
}

func (s *service) ContinueToPassengers(ctx context.Context, sessionID, callerID string) (*PassengerFormsResponse, error) {
	defer s.locks.lock(sessionID)()

	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	from := draft.Step
	if err := draft.ContinueToPassengers(); err != nil {
		return nil, err
	}

	if err := s.handoffs.SaveSeats(ctx, handoff.NewSeatHandoff(draft)); err != nil {
		return nil, err
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.log.LogStepAdvanced(ctx, sessionID, from.String(), draft.Step.String())
	return formsResponse(draft), nil
}

func (s *service) PassengerForms(ctx context.Context, sessionID, callerID string) (*PassengerFormsResponse, error) {
	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if draft.Step.IsTerminal() {
		return nil, wizard.ErrFlowClosed
	}
	if draft.Step.Before(wizard.StepPassengerInfo) {
		return nil, &wizard.StepError{Current: draft.Step, Required: wizard.StepPassengerInfo}
	}
	if err := s.requireSeatHandoff(ctx, draft); err != nil {
		return nil, err
	}
	return formsResponse(draft), nil
}

func (s *service) SubmitPassengers(ctx context.Context, sessionID, callerID string, records []wizard.PassengerRecord) (*PaymentSummary, error) {
	defer s.locks.lock(sessionID)()

	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if draft.Step == wizard.StepPassengerInfo {
		if err := s.requireSeatHandoff(ctx, draft); err != nil {
			return nil, err
		}
	}

	from := draft.Step
	if _, err := draft.SubmitPassengers(s.validator, records); err != nil {
		return nil, err
	}

	h := handoff.NewPassengerHandoff(draft)
	if err := s.handoffs.SavePassengers(ctx, h); err != nil {
		return nil, err
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.log.LogStepAdvanced(ctx, sessionID, from.String(), draft.Step.String())
	return paymentSummary(h), nil
}

func (s *service) PaymentSummary(ctx context.Context, sessionID, callerID string) (*PaymentSummary, error) {
	draft, err := s.loadPaymentDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if err := requirePaymentStep(draft); err != nil {
		return nil, err
	}

	h, err := s.loadPaymentHandoff(ctx, draft)
	if err != nil {
		return nil, err
	}
	return paymentSummary(h), nil
}

func (s *service) Pay(ctx context.Context, sessionID, callerID string, card wizard.PaymentDetails) (*wizard.Receipt, error) {
	defer s.locks.lock(sessionID)()

	draft, err := s.loadPaymentDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if err := requirePaymentStep(draft); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePayment(card); err != nil {
		return nil, err
	}

	h, err := s.loadPaymentHandoff(ctx, draft)
	if err != nil {
		return nil, err
	}
	if err := s.checkSeatsStillFree(ctx, draft); err != nil {
		return nil, err
	}

	charge, err := s.gateway.Charge(ctx, h.Pricing.Total, h.Pricing.Currency, card)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", wizard.ErrPaymentDeclined, err)
	}

	reference, err := s.allocateReference(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := s.newBooking(draft, h, reference, charge)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateConfirmedBooking(ctx, booking); err != nil {
		if isSeatConflict(err) {
			s.log.WithSession(sessionID).ErrorWithContext(ctx, "seats sold after charge, payment needs refund", err, map[string]interface{}{
				"transaction_id": charge.TransactionID,
				"amount":         charge.Amount,
			})
			return nil, s.releaseSoldSeats(ctx, draft)
		}
		return nil, fmt.Errorf("failed to record booking: %w", err)
	}

	from := draft.Step
	if err := draft.Confirm(reference); err != nil {
		return nil, err
	}

	receipt := wizard.NewReceipt(sessionID, reference, h.Flight, h.CabinClass, h.Seats, h.Passengers, h.Pricing, charge)
	rh := &handoff.ReceiptHandoff{OwnerID: draft.OwnerID, Receipt: receipt}
	rh.SessionID = sessionID
	if err := s.handoffs.SaveReceipt(ctx, rh); err != nil {
		s.log.ErrorWithContext(ctx, "failed to store receipt", err, map[string]interface{}{"session_id": sessionID})
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		s.log.ErrorWithContext(ctx, "failed to close booking session", err, map[string]interface{}{"session_id": sessionID})
	}
	if err := s.handoffs.Discard(ctx, sessionID, handoff.KindSeats, handoff.KindPassengers); err != nil {
		s.log.WarnContext(ctx, "failed to discard step hand-offs", "session_id", sessionID, "error", err)
	}

	s.seats.Invalidate(ctx, h.Flight.ID)
	if booking.UserID != nil {
		s.invalidateUserBookings(ctx, booking.UserID.String())
	}
	s.notify(ctx, booking, h)

	s.log.LogStepAdvanced(ctx, sessionID, from.String(), draft.Step.String())
	s.log.LogBookingConfirmed(ctx, sessionID, reference, charge.TransactionID, charge.Amount)
	return &receipt, nil
}

func (s *service) Back(ctx context.Context, sessionID, callerID, step string) (*SessionView, error) {
	defer s.locks.lock(sessionID)()

	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	target, ok := wizard.ParseStep(step)
	if !ok {
		return nil, fmt.Errorf("%w: unknown step %q", wizard.ErrInvalidTransition, step)
	}

	from := draft.Step
	if err := draft.Back(target); err != nil {
		return nil, err
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.log.LogStepAdvanced(ctx, sessionID, from.String(), draft.Step.String())
	return s.view(draft)
}

func (s *service) Confirmation(ctx context.Context, sessionID, callerID string) (*wizard.Receipt, error) {
	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if draft.Step != wizard.StepConfirmed {
		return nil, &wizard.StepError{Current: draft.Step, Required: wizard.StepConfirmed}
	}

	rh, err := s.handoffs.LoadReceipt(ctx, sessionID)
	if err != nil {
		if handoff.IsUnavailable(err) {
			return nil, ErrHandoffMissing
		}
		return nil, err
	}
	return &rh.Receipt, nil
}

func (s *service) Abandon(ctx context.Context, sessionID, callerID string) error {
	defer s.locks.lock(sessionID)()

	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if err != nil {
		return err
	}
	if err := s.handoffs.Discard(ctx, sessionID); err != nil {
		return err
	}

	s.log.InfoWithContext(ctx, "Booking session abandoned", map[string]interface{}{
		"session_id": sessionID,
		"step":       draft.Step.String(),
	})
	return nil
}

func (s *service) UserBookings(ctx context.Context, userID string, q BookingListQuery) (*BookingListResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	var resp BookingListResponse
	key := constants.BuildUserBookingsKey(uid.String()) + ":" + strconv.Itoa(q.Limit) + ":" + strconv.Itoa(q.Offset)
	err = s.cache.GetOrSet(ctx, key, constants.TTL_USER_BOOKINGS, func() (interface{}, error) {
		bookings, total, err := s.repo.GetUserBookings(ctx, uid, q.Limit, q.Offset)
		if err != nil {
			return nil, err
		}
		list := BookingListResponse{
			Bookings: make([]BookingSummary, 0, len(bookings)),
			Total:    total,
			Limit:    q.Limit,
			Offset:   q.Offset,
		}
		for i := range bookings {
			list.Bookings = append(list.Bookings, toBookingSummary(&bookings[i]))
		}
		return list, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// loadDraft fetches the session and enforces ownership. Guest sessions can be
// driven by anyone holding the session id.
func (s *service) loadDraft(ctx context.Context, sessionID, callerID string) (*wizard.BookingDraft, error) {
	draft, err := s.handoffs.LoadDraft(ctx, sessionID)
	if err != nil {
		if handoff.IsUnavailable(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if draft.OwnerID != "" && draft.OwnerID != callerID {
		return nil, ErrSessionForbidden
	}
	return draft, nil
}

// loadPaymentDraft sends an expired session back to search. Ids that could
// never have been issued stay not found.
func (s *service) loadPaymentDraft(ctx context.Context, sessionID, callerID string) (*wizard.BookingDraft, error) {
	draft, err := s.loadDraft(ctx, sessionID, callerID)
	if errors.Is(err, ErrSessionNotFound) && uuid.Validate(sessionID) == nil {
		return nil, ErrHandoffMissing
	}
	return draft, err
}

func (s *service) saveDraft(ctx context.Context, draft *wizard.BookingDraft) error {
	draft.UpdatedAt = s.now().UTC()
	return s.handoffs.SaveDraft(ctx, draft)
}

func (s *service) requireSeatHandoff(ctx context.Context, draft *wizard.BookingDraft) error {
	h, err := s.handoffs.LoadSeats(ctx, draft.SessionID)
	if err != nil {
		if handoff.IsUnavailable(err) {
			return ErrHandoffMissing
		}
		return err
	}
	if h.FlightID != draft.Flight.ID || !slices.Equal(h.Seats, draft.Selection.Seats) {
		return ErrHandoffMissing
	}
	return nil
}

// loadPaymentHandoff returns the passenger hand-off when it still matches the session
func (s *service) loadPaymentHandoff(ctx context.Context, draft *wizard.BookingDraft) (*handoff.PassengerHandoff, error) {
	h, err := s.handoffs.LoadPassengers(ctx, draft.SessionID)
	if err != nil {
		if handoff.IsUnavailable(err) {
			return nil, ErrHandoffMissing
		}
		return nil, err
	}
	if h.OwnerID != draft.OwnerID || h.Flight.ID != draft.Flight.ID || !slices.Equal(h.Seats, draft.Selection.Seats) {
		return nil, ErrHandoffMissing
	}
	return h, nil
}

// checkSeatsStillFree reads the live occupied set before the card is charged
func (s *service) checkSeatsStillFree(ctx context.Context, draft *wizard.BookingDraft) error {
	s.seats.Invalidate(ctx, draft.Flight.ID)
	occupied, err := s.seats.OccupiedSeats(ctx, draft.Flight.ID)
	if err != nil {
		return err
	}
	for _, seat := range draft.Selection.Seats {
		if slices.Contains(occupied, seat) {
			return s.applyOccupied(ctx, draft, occupied)
		}
	}
	return nil
}

func (s *service) releaseSoldSeats(ctx context.Context, draft *wizard.BookingDraft) error {
	s.seats.Invalidate(ctx, draft.Flight.ID)
	occupied, err := s.seats.OccupiedSeats(ctx, draft.Flight.ID)
	if err != nil {
		return err
	}
	return s.applyOccupied(ctx, draft, occupied)
}

// applyOccupied sends the session back to seat selection without the seats that were sold
func (s *service) applyOccupied(ctx context.Context, draft *wizard.BookingDraft, occupied []string) error {
	from := draft.Step
	lost, err := draft.RefreshOccupied(occupied)
	if err != nil {
		return err
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		return err
	}
	if err := s.handoffs.Discard(ctx, draft.SessionID, handoff.KindSeats, handoff.KindPassengers); err != nil {
		s.log.WarnContext(ctx, "failed to discard step hand-offs", "session_id", draft.SessionID, "error", err)
	}
	for _, seat := range lost {
		s.log.LogSeatRejected(ctx, draft.SessionID, seat, "sold to another booking")
	}
	if from != draft.Step {
		s.log.LogStepAdvanced(ctx, draft.SessionID, from.String(), draft.Step.String())
	}
	return &SeatConflictError{Seats: lost}
}

func (s *service) allocateReference(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		ref, err := wizard.GenerateReference()
		if err != nil {
			return "", err
		}
		exists, err := s.repo.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", ErrReferenceExhausted
}

func (s *service) newBooking(draft *wizard.BookingDraft, h *handoff.PassengerHandoff, reference string, charge *wizard.PaymentResult) (*Booking, error) {
	flightID, err := uuid.Parse(h.Flight.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid flight id on session: %w", err)
	}
	var userID *uuid.UUID
	if draft.OwnerID != "" {
		uid, err := uuid.Parse(draft.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner id on session: %w", err)
		}
		userID = &uid
	}
	return newBooking(draft.SessionID, reference, userID, flightID, h.CabinClass, h.Passengers, h.Pricing, charge), nil
}

func (s *service) invalidateUserBookings(ctx context.Context, userID string) {
	if err := s.cache.DeletePattern(ctx, constants.BuildUserBookingsKey(userID)+":*"); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate user bookings", "user_id", userID, "error", err)
	}
}

// notify mails the lead passenger. A failed send never fails the booking.
func (s *service) notify(ctx context.Context, booking *Booking, h *handoff.PassengerHandoff) {
	if s.notifier == nil || len(h.Passengers) == 0 {
		return
	}
	lead := h.Passengers[0]
	msg := notifications.BookingConfirmation{
		Email:         lead.Email,
		Name:          lead.FullName(),
		Reference:     booking.BookingRef,
		FlightNumber:  h.Flight.FlightNumber,
		Route:         h.Flight.DepartureAirportCode + " - " + h.Flight.ArrivalAirportCode,
		DepartureTime: h.Flight.DepartureTime,
		Seats:         h.Seats,
		Total:         h.Pricing.Total,
		Currency:      h.Pricing.Currency,
	}
	if booking.UserID != nil {
		msg.UserID = *booking.UserID
	}
	if err := s.notifier.SendBookingConfirmation(ctx, msg); err != nil {
		s.log.ErrorWithContext(ctx, "failed to send booking confirmation", err, map[string]interface{}{
			"booking_ref": booking.BookingRef,
		})
	}
}

func (s *service) view(draft *wizard.BookingDraft) (*SessionView, error) {
	seatMap, err := draft.SeatMap()
	if err != nil {
		return nil, err
	}
	return &SessionView{
		SessionID:        draft.SessionID,
		Step:             draft.Step,
		Flight:           draft.Flight,
		CabinClass:       string(draft.CabinClass),
		PassengerCount:   draft.PassengerCount,
		SelectedSeats:    draft.Selection.List(),
		CanContinue:      draft.CanContinue(),
		AvailableSeats:   seatMap.AvailableCount(),
		Grid:             seatMap.Grid(draft.Selection),
		Pricing:          draft.Pricing,
		BookingReference: draft.BookingReference,
		ExpiresAt:        draft.UpdatedAt.Add(s.ttl),
	}, nil
}

func requirePaymentStep(draft *wizard.BookingDraft) error {
	if draft.Step.IsTerminal() {
		return wizard.ErrFlowClosed
	}
	if draft.Step != wizard.StepPayment {
		return &wizard.StepError{Current: draft.Step, Required: wizard.StepPayment}
	}
	return nil
}

func formsResponse(draft *wizard.BookingDraft) *PassengerFormsResponse {
	return &PassengerFormsResponse{
		SessionID: draft.SessionID,
		Step:      draft.Step,
		Seats:     draft.Selection.List(),
		Forms:     draft.PassengerForms(),
		Pricing:   draft.Pricing,
	}
}

func paymentSummary(h *handoff.PassengerHandoff) *PaymentSummary {
	passengers := make([]wizard.ReceiptPassenger, 0, len(h.Passengers))
	for _, p := range h.Passengers {
		passengers = append(passengers, wizard.ReceiptPassenger{
			Seat:      p.Seat,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
		})
	}
	return &PaymentSummary{
		SessionID:  h.SessionID,
		Flight:     h.Flight,
		CabinClass: string(h.CabinClass),
		Seats:      h.Seats,
		Passengers: passengers,
		Pricing:    h.Pricing,
		ExpiresAt:  h.ExpiresAt,
	}
}
