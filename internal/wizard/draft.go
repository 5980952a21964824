package wizard

import (
	"fmt"
	"slices"
	"time"
)

// DraftParams are the inputs needed to leave the search step
type DraftParams struct {
	SessionID      string
	OwnerID        string
	Flight         *FlightRef
	CabinClass     CabinClass
	PassengerCount int
	MaxPassengers  int
	Layout         Layout
	Occupied       []string
	Policy         PricingPolicy
	Now            time.Time
}

// BookingDraft is the not-yet-confirmed booking. It round-trips through JSON
// so it can live in the session store between requests.
type BookingDraft struct {
	SessionID        string            `json:"session_id"`
	OwnerID          string            `json:"owner_id,omitempty"`
	Flight           FlightRef         `json:"flight"`
	CabinClass       CabinClass        `json:"cabin_class"`
	PassengerCount   int               `json:"passenger_count"`
	Layout           Layout            `json:"layout"`
	Occupied         []string          `json:"occupied"`
	Policy           PricingPolicy     `json:"policy"`
	Selection        Selection         `json:"selection"`
	Passengers       []PassengerRecord `json:"passengers"`
	Pricing          *Pricing          `json:"pricing,omitempty"`
	Step             Step              `json:"step"`
	BookingReference string            `json:"booking_reference,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewDraft leaves the search step: the flight is chosen and seat selection begins
func NewDraft(p DraftParams) (*BookingDraft, error) {
	if p.Flight == nil || p.Flight.ID == "" {
		return nil, ErrMissingFlight
	}
	if !p.CabinClass.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCabinClass, p.CabinClass)
	}

	seatMap, err := NewSeatMap(p.Layout, p.Occupied)
	if err != nil {
		return nil, err
	}
	if p.PassengerCount < 1 || (p.MaxPassengers > 0 && p.PassengerCount > p.MaxPassengers) {
		return nil, fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidPassengerCount, p.PassengerCount, p.MaxPassengers)
	}
	if p.PassengerCount > seatMap.AvailableCount() {
		return nil, fmt.Errorf("%w: only %d seats left", ErrInvalidPassengerCount, seatMap.AvailableCount())
	}

	return &BookingDraft{
		SessionID:      p.SessionID,
		OwnerID:        p.OwnerID,
		Flight:         *p.Flight,
		CabinClass:     p.CabinClass,
		PassengerCount: p.PassengerCount,
		Layout:         p.Layout,
		Occupied:       seatMap.Occupied(),
		Policy:         p.Policy,
		Selection:      NewSelection(p.PassengerCount),
		Passengers:     []PassengerRecord{},
		Step:           StepSeatSelection,
		CreatedAt:      p.Now,
		UpdatedAt:      p.Now,
	}, nil
}

// SeatMap rebuilds the seat map from the stored layout and occupied snapshot
func (d *BookingDraft) SeatMap() (*SeatMap, error) {
	return NewSeatMap(d.Layout, d.Occupied)
}

func (d *BookingDraft) ensureOpen() error {
	if d.Step.IsTerminal() {
		return ErrFlowClosed
	}
	return nil
}

func (d *BookingDraft) requireStep(step Step) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	if d.Step != step {
		return &StepError{Current: d.Step, Required: step}
	}
	return nil
}

// ToggleSeat applies a seat click. Deselecting a seat also drops the passenger
// record that was bound to it.
func (d *BookingDraft) ToggleSeat(seat string) (ToggleOutcome, string, error) {
	if err := d.requireStep(StepSeatSelection); err != nil {
		return "", "", err
	}
	seatMap, err := d.SeatMap()
	if err != nil {
		return "", "", err
	}

	outcome, id, err := d.Selection.Toggle(seatMap, seat)
	if err != nil {
		return outcome, id, err
	}
	if outcome == ToggleDeselected {
		d.dropPassenger(id)
	}
	return outcome, id, nil
}

// CanContinue reports whether the seat step may be left
func (d *BookingDraft) CanContinue() bool {
	return d.Step == StepSeatSelection && d.Selection.IsComplete()
}

// ContinueToPassengers leaves seat selection once every passenger has a seat
func (d *BookingDraft) ContinueToPassengers() error {
	if err := d.requireStep(StepSeatSelection); err != nil {
		return err
	}
	if !d.Selection.IsComplete() {
		return fmt.Errorf("%w: %d of %d selected", ErrSelectionIncomplete, d.Selection.Len(), d.PassengerCount)
	}

	d.reconcilePassengers()
	pricing := Quote(d.Flight.BasePrice, d.CabinClass, d.Selection.Len(), d.Policy)
	d.Pricing = &pricing
	d.advance()
	return nil
}

// PassengerForms returns one record per selected seat in selection order,
// reusing saved records where they exist
func (d *BookingDraft) PassengerForms() []PassengerRecord {
	bySeat := make(map[string]PassengerRecord, len(d.Passengers))
	for _, p := range d.Passengers {
		bySeat[p.Seat] = p
	}

	forms := make([]PassengerRecord, 0, d.Selection.Len())
	for _, seat := range d.Selection.Seats {
		if p, ok := bySeat[seat]; ok {
			forms = append(forms, p)
		} else {
			forms = append(forms, EmptyPassenger(seat))
		}
	}
	return forms
}

// SubmitPassengers accepts all records or none
func (d *BookingDraft) SubmitPassengers(v *Validator, records []PassengerRecord) ([]PassengerRecord, error) {
	if err := d.requireStep(StepPassengerInfo); err != nil {
		return nil, err
	}

	accepted, err := v.ValidatePassengers(d.Selection.Seats, records)
	if err != nil {
		return nil, err
	}

	d.Passengers = slices.Clone(accepted)
	d.advance()
	return accepted, nil
}

// Back moves to an earlier step. Only the seat and passenger steps are valid targets.
func (d *BookingDraft) Back(target Step) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	if !d.Step.CanGoBack(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Step, target)
	}
	d.Step = target
	return nil
}

// Confirm closes the flow. Nothing on the draft can change afterwards.
func (d *BookingDraft) Confirm(reference string) error {
	if err := d.requireStep(StepPayment); err != nil {
		return err
	}
	d.BookingReference = reference
	d.advance()
	return nil
}

// RefreshOccupied merges a fresher occupied set into the snapshot. Selected seats
// sold in the meantime are released with their passengers, and the flow goes back
// to seat selection when any were lost. It returns the released seats.
func (d *BookingDraft) RefreshOccupied(occupied []string) ([]string, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	seatMap, err := NewSeatMap(d.Layout, append(slices.Clone(d.Occupied), occupied...))
	if err != nil {
		return nil, err
	}
	d.Occupied = seatMap.Occupied()

	var lost []string
	kept := make([]string, 0, d.Selection.Len())
	for _, seat := range d.Selection.Seats {
		if seatMap.IsOccupied(seat) {
			lost = append(lost, seat)
			d.dropPassenger(seat)
			continue
		}
		kept = append(kept, seat)
	}
	if len(lost) > 0 {
		d.Selection.Seats = kept
		d.Pricing = nil
		d.Step = StepSeatSelection
	}
	return lost, nil
}

func (d *BookingDraft) advance() {
	if next, ok := d.Step.Next(); ok {
		d.Step = next
	}
}

func (d *BookingDraft) dropPassenger(seat string) {
	kept := make([]PassengerRecord, 0, len(d.Passengers))
	for _, p := range d.Passengers {
		if p.Seat != seat {
			kept = append(kept, p)
		}
	}
	d.Passengers = kept
}

// reconcilePassengers keeps records for seats still selected, in selection order
func (d *BookingDraft) reconcilePassengers() {
	bySeat := make(map[string]PassengerRecord, len(d.Passengers))
	for _, p := range d.Passengers {
		bySeat[p.Seat] = p
	}
	kept := make([]PassengerRecord, 0, len(d.Passengers))
	for _, seat := range d.Selection.Seats {
		if p, ok := bySeat[seat]; ok {
			kept = append(kept, p)
		}
	}
	d.Passengers = kept
}
