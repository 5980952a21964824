package wizard

import "strings"

// Step is a stage of the booking wizard
type Step string

const (
	StepSearch        Step = "SEARCH"
	StepSeatSelection Step = "SEAT_SELECTION"
	StepPassengerInfo Step = "PASSENGER_INFO"
	StepPayment       Step = "PAYMENT"
	StepConfirmed     Step = "CONFIRMED"
)

var stepOrder = map[Step]int{
	StepSearch:        0,
	StepSeatSelection: 1,
	StepPassengerInfo: 2,
	StepPayment:       3,
	StepConfirmed:     4,
}

// forward edges; each is gated by the exit check of its source step
var forwardTransitions = map[Step]Step{
	StepSearch:        StepSeatSelection,
	StepSeatSelection: StepPassengerInfo,
	StepPassengerInfo: StepPayment,
	StepPayment:       StepConfirmed,
}

// ParseStep accepts any casing
func ParseStep(s string) (Step, bool) {
	step := Step(strings.ToUpper(strings.TrimSpace(s)))
	return step, step.IsValid()
}

func (s Step) IsValid() bool {
	_, ok := stepOrder[s]
	return ok
}

func (s Step) String() string {
	return string(s)
}

// Next returns the step that follows s, if any
func (s Step) Next() (Step, bool) {
	next, ok := forwardTransitions[s]
	return next, ok
}

// IsTerminal reports whether no further mutation is allowed
func (s Step) IsTerminal() bool {
	return s == StepConfirmed
}

// IsBackTarget reports whether the user may navigate back to s
func (s Step) IsBackTarget() bool {
	return s == StepSeatSelection || s == StepPassengerInfo
}

// CanGoBack reports whether navigating from s to target is allowed
func (s Step) CanGoBack(target Step) bool {
	if s.IsTerminal() || !target.IsBackTarget() {
		return false
	}
	return stepOrder[target] < stepOrder[s]
}

// Before reports whether s comes strictly before other in the flow
func (s Step) Before(other Step) bool {
	return stepOrder[s] < stepOrder[other]
}
