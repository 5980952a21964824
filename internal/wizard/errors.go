package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrFlowClosed            = errors.New("booking is already confirmed")
	ErrWrongStep             = errors.New("operation not allowed at the current step")
	ErrInvalidTransition     = errors.New("invalid step transition")
	ErrSelectionIncomplete   = errors.New("selected seats must match the passenger count")
	ErrUnknownSeat           = errors.New("seat is not on this seat map")
	ErrInvalidPassengerCount = errors.New("invalid passenger count")
	ErrInvalidCabinClass     = errors.New("invalid cabin class")
	ErrMissingFlight         = errors.New("a flight must be chosen before seat selection")
	ErrPaymentDeclined       = errors.New("payment was declined")
)

// CapacityError is returned when a toggle would push the selection past the passenger count
type CapacityError struct {
	Seat     string
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("cannot select seat %s: already selected %d of %d seats", e.Seat, e.Capacity, e.Capacity)
}

// StepError reports an operation attempted at a step that does not allow it
type StepError struct {
	Current  Step
	Required Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("booking is at step %s, operation requires %s", e.Current, e.Required)
}

func (e *StepError) Unwrap() error {
	return ErrWrongStep
}

// FieldErrors maps a JSON field name to a message
type FieldErrors map[string]string

// RecordError holds the problems found in one passenger record
type RecordError struct {
	Index  int         `json:"index"`
	Seat   string      `json:"seat"`
	Fields FieldErrors `json:"fields"`
}

// PassengerValidationError carries per-record field errors. None of the
// submitted records were accepted when this is returned.
type PassengerValidationError struct {
	Records []RecordError
	// Reason is set for submission-level problems such as a record count mismatch
	Reason string
}

func (e *PassengerValidationError) Error() string {
	if e.Reason != "" {
		return "passenger details rejected: " + e.Reason
	}
	return fmt.Sprintf("passenger details rejected: %d invalid record(s)", len(e.Records))
}

// PaymentValidationError carries card field errors
type PaymentValidationError struct {
	Fields FieldErrors
}

func (e *PaymentValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid payment details: " + strings.Join(keys, ", ")
}

// IsCapacityError reports whether err is a *CapacityError
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}
