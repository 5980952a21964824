package wizard

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SeatStatus is derived, never stored
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatOccupied  SeatStatus = "occupied"
	SeatSelected  SeatStatus = "selected"
)

var seatIDPattern = regexp.MustCompile(`^([1-9][0-9]*)([A-Z])$`)

// Layout describes the cabin grid. Seats are numbered row first, then column letter.
type Layout struct {
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
	// AisleAfter is the number of columns left of the aisle
	AisleAfter int `json:"aisle_after"`
}

// DefaultLayout is 30 rows of A-F with the aisle between C and D
func DefaultLayout() Layout {
	return Layout{
		Rows:       30,
		Columns:    []string{"A", "B", "C", "D", "E", "F"},
		AisleAfter: 3,
	}
}

// NewLayout builds a layout with the aisle in the middle
func NewLayout(rows int, columns []string) Layout {
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			cols = append(cols, c)
		}
	}
	return Layout{Rows: rows, Columns: cols, AisleAfter: len(cols) / 2}
}

func (l Layout) validate() error {
	if l.Rows <= 0 {
		return fmt.Errorf("seat map needs at least one row, got %d", l.Rows)
	}
	if len(l.Columns) == 0 {
		return fmt.Errorf("seat map needs at least one column")
	}
	seen := make(map[string]bool, len(l.Columns))
	for _, c := range l.Columns {
		if len(c) != 1 || c[0] < 'A' || c[0] > 'Z' {
			return fmt.Errorf("invalid seat column %q", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate seat column %q", c)
		}
		seen[c] = true
	}
	return nil
}

// SeatMap is a fixed grid plus the occupied set captured when the session started
type SeatMap struct {
	layout   Layout
	columns  map[string]int
	occupied map[string]struct{}
}

// NewSeatMap builds a seat map. Occupied identifiers that are not on the grid are ignored.
func NewSeatMap(layout Layout, occupied []string) (*SeatMap, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}

	m := &SeatMap{
		layout:   layout,
		columns:  make(map[string]int, len(layout.Columns)),
		occupied: make(map[string]struct{}, len(occupied)),
	}
	for i, c := range layout.Columns {
		m.columns[c] = i
	}
	for _, raw := range occupied {
		if id, err := m.Normalize(raw); err == nil {
			m.occupied[id] = struct{}{}
		}
	}
	return m, nil
}

// Normalize returns the canonical identifier ("5a" -> "5A") or ErrUnknownSeat
func (m *SeatMap) Normalize(raw string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(raw))
	parts := seatIDPattern.FindStringSubmatch(id)
	if parts == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownSeat, raw)
	}
	row, _ := strconv.Atoi(parts[1])
	if row > m.layout.Rows {
		return "", fmt.Errorf("%w: %q", ErrUnknownSeat, raw)
	}
	if _, ok := m.columns[parts[2]]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSeat, raw)
	}
	return id, nil
}

func (m *SeatMap) IsOccupied(id string) bool {
	_, ok := m.occupied[id]
	return ok
}

// Capacity is the number of seats on the grid
func (m *SeatMap) Capacity() int {
	return m.layout.Rows * len(m.layout.Columns)
}

// AvailableCount is the number of seats not occupied
func (m *SeatMap) AvailableCount() int {
	return m.Capacity() - len(m.occupied)
}

func (m *SeatMap) Layout() Layout {
	return m.layout
}

// Occupied returns the occupied set in grid order
func (m *SeatMap) Occupied() []string {
	ids := make([]string, 0, len(m.occupied))
	for id := range m.occupied {
		ids = append(ids, id)
	}
	m.sortSeats(ids)
	return ids
}

// Status derives the status of a seat for the given selection
func (m *SeatMap) Status(id string, sel Selection) SeatStatus {
	switch {
	case m.IsOccupied(id):
		return SeatOccupied
	case sel.Contains(id):
		return SeatSelected
	default:
		return SeatAvailable
	}
}

// SeatView is one cell of a rendered seat map
type SeatView struct {
	ID         string     `json:"id"`
	Column     string     `json:"column"`
	Status     SeatStatus `json:"status"`
	AisleAfter bool       `json:"aisle_after,omitempty"`
}

// SeatRow is one row of a rendered seat map
type SeatRow struct {
	Number int        `json:"number"`
	Seats  []SeatView `json:"seats"`
}

// Grid renders every seat with its status
func (m *SeatMap) Grid(sel Selection) []SeatRow {
	rows := make([]SeatRow, 0, m.layout.Rows)
	for r := 1; r <= m.layout.Rows; r++ {
		row := SeatRow{Number: r, Seats: make([]SeatView, 0, len(m.layout.Columns))}
		for i, c := range m.layout.Columns {
			id := strconv.Itoa(r) + c
			row.Seats = append(row.Seats, SeatView{
				ID:         id,
				Column:     c,
				Status:     m.Status(id, sel),
				AisleAfter: i+1 == m.layout.AisleAfter && i+1 < len(m.layout.Columns),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

func (m *SeatMap) sortSeats(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ri, ci := m.position(ids[i])
		rj, cj := m.position(ids[j])
		if ri != rj {
			return ri < rj
		}
		return ci < cj
	})
}

func (m *SeatMap) position(id string) (int, int) {
	parts := seatIDPattern.FindStringSubmatch(id)
	if parts == nil {
		return 0, 0
	}
	row, _ := strconv.Atoi(parts[1])
	return row, m.columns[parts[2]]
}
