package wizard

import "slices"

// ToggleOutcome describes what a toggle did
type ToggleOutcome string

const (
	ToggleSelected   ToggleOutcome = "selected"
	ToggleDeselected ToggleOutcome = "deselected"
	// ToggleIgnored is the no-op answer for occupied seats
	ToggleIgnored ToggleOutcome = "ignored"
)

// Selection is the ordered set of chosen seats. It never holds more than Capacity entries.
type Selection struct {
	Seats    []string `json:"seats"`
	Capacity int      `json:"capacity"`
}

func NewSelection(capacity int) Selection {
	return Selection{Seats: []string{}, Capacity: capacity}
}

// Toggle applies a click on a seat. A full selection rejects new seats with a
// *CapacityError and is left untouched.
func (s *Selection) Toggle(m *SeatMap, raw string) (ToggleOutcome, string, error) {
	id, err := m.Normalize(raw)
	if err != nil {
		return "", "", err
	}

	if m.IsOccupied(id) {
		return ToggleIgnored, id, nil
	}

	if i := slices.Index(s.Seats, id); i >= 0 {
		s.Seats = slices.Delete(s.Seats, i, i+1)
		return ToggleDeselected, id, nil
	}

	if len(s.Seats) >= s.Capacity {
		return "", id, &CapacityError{Seat: id, Capacity: s.Capacity}
	}

	s.Seats = append(s.Seats, id)
	return ToggleSelected, id, nil
}

func (s Selection) Contains(id string) bool {
	return slices.Contains(s.Seats, id)
}

func (s Selection) Len() int {
	return len(s.Seats)
}

// IsComplete is the gate for leaving seat selection
func (s Selection) IsComplete() bool {
	return len(s.Seats) == s.Capacity
}

// List returns a copy of the selected seats in selection order
func (s Selection) List() []string {
	return slices.Clone(s.Seats)
}
