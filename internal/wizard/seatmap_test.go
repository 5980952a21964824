package wizard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatMap_Normalize(t *testing.T) {
	m := newTestSeatMap(t)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5a", "5A", false},
		{" 30F ", "30F", false},
		{"1A", "1A", false},
		{"31A", "", true},
		{"05A", "", true},
		{"5G", "", true},
		{"5", "", true},
	}

	for _, tt := range tests {
		got, err := m.Normalize(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownSeat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSeatMap_OccupiedIgnoresSeatsOffTheGrid(t *testing.T) {
	m := newTestSeatMap(t, "8f", "1A", "99Z", "2c")

	assert.Equal(t, []string{"1A", "2C", "8F"}, m.Occupied())
	assert.Equal(t, 180, m.Capacity())
	assert.Equal(t, 177, m.AvailableCount())
}

func TestSeatMap_GridStatusesAreExclusive(t *testing.T) {
	m := newTestSeatMap(t, "1A")
	sel := NewSelection(2)
	_, _, err := sel.Toggle(m, "1B")
	require.NoError(t, err)

	grid := m.Grid(sel)
	require.Len(t, grid, 30)

	want := []SeatView{
		{ID: "1A", Column: "A", Status: SeatOccupied},
		{ID: "1B", Column: "B", Status: SeatSelected},
		{ID: "1C", Column: "C", Status: SeatAvailable, AisleAfter: true},
		{ID: "1D", Column: "D", Status: SeatAvailable},
		{ID: "1E", Column: "E", Status: SeatAvailable},
		{ID: "1F", Column: "F", Status: SeatAvailable},
	}
	if diff := cmp.Diff(want, grid[0].Seats); diff != "" {
		t.Errorf("row 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSeatMap_RejectsBadLayouts(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
	}{
		{"no rows", Layout{Rows: 0, Columns: []string{"A"}}},
		{"no columns", Layout{Rows: 3}},
		{"lowercase column", Layout{Rows: 3, Columns: []string{"a"}}},
		{"duplicate column", Layout{Rows: 3, Columns: []string{"A", "A"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeatMap(tt.layout, nil)
			assert.Error(t, err)
		})
	}
}

func TestNewLayout_PutsAisleInTheMiddle(t *testing.T) {
	l := NewLayout(10, []string{"a", "b", "c", "d"})
	assert.Equal(t, []string{"A", "B", "C", "D"}, l.Columns)
	assert.Equal(t, 2, l.AisleAfter)
}

func TestStep_CanGoBack(t *testing.T) {
	tests := []struct {
		from, to Step
		want     bool
	}{
		{StepPassengerInfo, StepSeatSelection, true},
		{StepPayment, StepSeatSelection, true},
		{StepPayment, StepPassengerInfo, true},
		{StepSeatSelection, StepSeatSelection, false},
		{StepSeatSelection, StepPassengerInfo, false},
		{StepPayment, StepSearch, false},
		{StepPassengerInfo, StepPayment, false},
		{StepConfirmed, StepPassengerInfo, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanGoBack(tt.to), "%s -> %s", tt.from, tt.to)
	}

	step, ok := ParseStep("passenger_info")
	assert.True(t, ok)
	assert.Equal(t, StepPassengerInfo, step)
	_, ok = ParseStep("checkout")
	assert.False(t, ok)
}

func TestStep_NextWalksTheFlowOnce(t *testing.T) {
	var walked []Step
	for step, ok := StepSearch, true; ok; step, ok = step.Next() {
		walked = append(walked, step)
	}
	assert.Equal(t, []Step{StepSearch, StepSeatSelection, StepPassengerInfo, StepPayment, StepConfirmed}, walked)

	_, ok := StepConfirmed.Next()
	assert.False(t, ok)
}
